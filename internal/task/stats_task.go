package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"storefront_v1_202509/internal/service"
)

// ==================== DailyStatsTask 日统计折叠任务 ====================

// DailyStatsTask 每天凌晨把前一天的交互事件折叠为商品/分类日统计
type DailyStatsTask struct {
	analyticsService *service.AnalyticsService
	cron             *cron.Cron
	spec             string
}

// NewDailyStatsTask 创建日统计任务
// spec 为六段 cron 表达式，默认每天 00:00:10 执行
func NewDailyStatsTask(analyticsService *service.AnalyticsService, spec string) *DailyStatsTask {
	if spec == "" {
		spec = "0 10 0 * * *"
	}
	return &DailyStatsTask{
		analyticsService: analyticsService,
		cron:             cron.New(cron.WithSeconds()),
		spec:             spec,
	}
}

// Start 启动定时任务
func (t *DailyStatsTask) Start() {
	_, err := t.cron.AddFunc(t.spec, func() {
		t.RunOnce(time.Now().AddDate(0, 0, -1))
	})
	if err != nil {
		log.Printf("[DailyStatsTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Printf("[DailyStatsTask] 已启动, spec=%s", t.spec)
}

// RunOnce 折叠指定日期的统计，补数时可单独调用
func (t *DailyStatsTask) RunOnce(day time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Printf("[DailyStatsTask] 开始折叠 %s 的日统计...", day.Format("2006-01-02"))
	if err := t.analyticsService.ComputeDailyStats(ctx, day); err != nil {
		log.Printf("[DailyStatsTask] 折叠失败: %v", err)
		return
	}
	log.Printf("[DailyStatsTask] 折叠完成 %s", day.Format("2006-01-02"))
}

// Stop 停止任务，等待正在执行的折叠结束
func (t *DailyStatsTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[DailyStatsTask] 已停止")
}
