package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/model"
)

// ==================== 漏斗 ====================

func TestAnalyticsService_FunnelEmptyData(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnalyticsService(db)

	// 无任何数据时各阶段为 0，转化率不除零
	funnel, err := svc.Funnel(context.Background(), &dto.AnalyticsQueryRequest{})
	if err != nil {
		t.Fatalf("漏斗查询失败: %v", err)
	}
	if funnel.Viewed != 0 || funnel.AddedToCart != 0 || funnel.Purchased != 0 {
		t.Errorf("期望全零漏斗, 实际 %+v", funnel)
	}
	if funnel.ViewToCartRate != 0 || funnel.CartToPurchaseRate != 0 || funnel.OverallRate != 0 {
		t.Errorf("期望转化率为 0, 实际 %+v", funnel)
	}
}

func TestAnalyticsService_FunnelRates(t *testing.T) {
	db := setupTestDB(t)
	trackingSvc := newTrackingService(db)
	svc := newAnalyticsService(db)

	product := seedProduct(t, db, "bottle", 450, 100)

	// 4 个访客浏览，2 个加车，1 个购买
	for _, key := range []string{"v1", "v2", "v3", "v4"} {
		track(t, trackingSvc, model.AnonymousVisitor(key), product.ID, model.InteractionView)
	}
	track(t, trackingSvc, model.AnonymousVisitor("v1"), product.ID, model.InteractionAddToCart)
	track(t, trackingSvc, model.AnonymousVisitor("v2"), product.ID, model.InteractionAddToCart)
	track(t, trackingSvc, model.AnonymousVisitor("v1"), product.ID, model.InteractionPurchase)

	funnel, err := svc.Funnel(context.Background(), &dto.AnalyticsQueryRequest{})
	if err != nil {
		t.Fatalf("漏斗查询失败: %v", err)
	}
	if funnel.Viewed != 4 || funnel.AddedToCart != 2 || funnel.Purchased != 1 {
		t.Fatalf("漏斗计数不符: %+v", funnel)
	}
	if funnel.ViewToCartRate != 50.0 {
		t.Errorf("期望浏览→加车 50%%, 实际 %v", funnel.ViewToCartRate)
	}
	if funnel.CartToPurchaseRate != 50.0 {
		t.Errorf("期望加车→购买 50%%, 实际 %v", funnel.CartToPurchaseRate)
	}
	if funnel.OverallRate != 25.0 {
		t.Errorf("期望整体转化 25%%, 实际 %v", funnel.OverallRate)
	}
	if funnel.AbandonmentRate != 50.0 {
		t.Errorf("期望弃购率 50%%, 实际 %v", funnel.AbandonmentRate)
	}
}

func TestAnalyticsService_BehaviorLists(t *testing.T) {
	db := setupTestDB(t)
	trackingSvc := newTrackingService(db)
	svc := newAnalyticsService(db)

	looked := seedProduct(t, db, "looked", 500, 10)
	bought := seedProduct(t, db, "bought", 500, 10)

	// looked：两个访客只看不买；bought：看了并买了
	track(t, trackingSvc, model.AnonymousVisitor("b1"), looked.ID, model.InteractionView)
	track(t, trackingSvc, model.AnonymousVisitor("b2"), looked.ID, model.InteractionView)
	track(t, trackingSvc, model.AnonymousVisitor("b1"), bought.ID, model.InteractionView)
	track(t, trackingSvc, model.AnonymousVisitor("b1"), bought.ID, model.InteractionPurchase)
	// b2 加车 looked 后又移除
	track(t, trackingSvc, model.AnonymousVisitor("b2"), looked.ID, model.InteractionAddToCart)
	track(t, trackingSvc, model.AnonymousVisitor("b2"), looked.ID, model.InteractionRemoveFromCart)

	lists, err := svc.BehaviorLists(context.Background(), &dto.AnalyticsQueryRequest{Limit: 10})
	if err != nil {
		t.Fatalf("流失榜查询失败: %v", err)
	}
	if len(lists.ViewedNotPurchased) != 1 || lists.ViewedNotPurchased[0].ProductID != looked.ID ||
		lists.ViewedNotPurchased[0].Count != 2 {
		t.Errorf("看了没买榜不符: %+v", lists.ViewedNotPurchased)
	}
	if len(lists.AddedThenRemoved) != 1 || lists.AddedThenRemoved[0].ProductID != looked.ID {
		t.Errorf("加车又移除榜不符: %+v", lists.AddedThenRemoved)
	}
}

// ==================== 总览与营收 ====================

func TestAnalyticsService_OverviewRevenue(t *testing.T) {
	db := setupTestDB(t)
	trackingSvc := newTrackingService(db)
	svc := newAnalyticsService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "teapot", 2000, 100)

	// 购买 3 件，营收 = 数量 × 当前实际售价
	err := trackingSvc.Track(ctx, model.AnonymousVisitor("buyer"), &dto.TrackInteractionRequest{
		ProductID:       product.ID,
		InteractionType: model.InteractionPurchase,
		Metadata:        map[string]interface{}{"quantity": 3},
	}, RequestContext{})
	if err != nil {
		t.Fatalf("上报购买失败: %v", err)
	}
	track(t, trackingSvc, model.AnonymousVisitor("viewer"), product.ID, model.InteractionView)
	track(t, trackingSvc, model.AccountVisitor(9), product.ID, model.InteractionView)

	overview, err := svc.Overview(ctx, &dto.AnalyticsQueryRequest{})
	if err != nil {
		t.Fatalf("总览查询失败: %v", err)
	}
	if overview.Counts[model.InteractionPurchase] != 1 || overview.Counts[model.InteractionView] != 2 {
		t.Errorf("计数不符: %+v", overview.Counts)
	}
	if overview.UniqueUsers != 1 || overview.UniqueSessions != 2 {
		t.Errorf("去重访客不符: users=%d sessions=%d", overview.UniqueUsers, overview.UniqueSessions)
	}
	if overview.Revenue != 60.00 {
		t.Errorf("期望营收 60.00, 实际 %v", overview.Revenue)
	}

	// 改价后营收口径跟随当前售价
	db.Model(&model.Product{}).Where("id = ?", product.ID).Update("discount_amount", 1500)
	overview, err = svc.Overview(ctx, &dto.AnalyticsQueryRequest{})
	if err != nil {
		t.Fatalf("总览查询失败: %v", err)
	}
	if overview.Revenue != 45.00 {
		t.Errorf("期望改价后营收 45.00, 实际 %v", overview.Revenue)
	}
}

// ==================== Top-N 与导出 ====================

func TestAnalyticsService_TopProducts(t *testing.T) {
	db := setupTestDB(t)
	trackingSvc := newTrackingService(db)
	svc := newAnalyticsService(db)

	hot := seedProduct(t, db, "hot", 100, 10)
	cold := seedProduct(t, db, "cold", 100, 10)

	for i := 0; i < 3; i++ {
		track(t, trackingSvc, model.AnonymousVisitor("s1"), hot.ID, model.InteractionView)
	}
	track(t, trackingSvc, model.AnonymousVisitor("s1"), cold.ID, model.InteractionView)

	list, err := svc.TopProducts(context.Background(), &dto.AnalyticsQueryRequest{InteractionType: model.InteractionView, Limit: 10})
	if err != nil {
		t.Fatalf("Top-N 查询失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 2 个商品, 实际 %d", len(list))
	}
	if list[0].ProductID != hot.ID || list[0].Count != 3 {
		t.Errorf("期望 hot 居首且计数 3, 实际 %+v", list[0])
	}
}

func TestAnalyticsService_ExportCSV(t *testing.T) {
	db := setupTestDB(t)
	trackingSvc := newTrackingService(db)
	svc := newAnalyticsService(db)

	product := seedProduct(t, db, "mug", 800, 10)
	track(t, trackingSvc, model.AnonymousVisitor("s-csv"), product.ID, model.InteractionView)

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), &buf, &dto.AnalyticsQueryRequest{}); err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("期望表头 + 1 行数据, 实际 %d 行", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,product_id,product_name,interaction_type") {
		t.Errorf("表头不符: %s", lines[0])
	}
	if !strings.Contains(lines[1], "mug") || !strings.Contains(lines[1], "view") {
		t.Errorf("数据行不符: %s", lines[1])
	}
}

// ==================== 日统计折叠 ====================

func TestAnalyticsService_ComputeDailyStats(t *testing.T) {
	db := setupTestDB(t)
	trackingSvc := newTrackingService(db)
	svc := newAnalyticsService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "jar", 1000, 100)

	track(t, trackingSvc, model.AnonymousVisitor("d1"), product.ID, model.InteractionView)
	track(t, trackingSvc, model.AnonymousVisitor("d2"), product.ID, model.InteractionView)
	track(t, trackingSvc, model.AnonymousVisitor("d1"), product.ID, model.InteractionAddToCart)
	err := trackingSvc.Track(ctx, model.AnonymousVisitor("d1"), &dto.TrackInteractionRequest{
		ProductID:       product.ID,
		InteractionType: model.InteractionPurchase,
		Metadata:        map[string]interface{}{"quantity": 2},
	}, RequestContext{})
	if err != nil {
		t.Fatalf("上报购买失败: %v", err)
	}

	if err := svc.ComputeDailyStats(ctx, time.Now()); err != nil {
		t.Fatalf("折叠失败: %v", err)
	}

	var stats model.DailyProductStats
	if err := db.Where("product_id = ?", product.ID).First(&stats).Error; err != nil {
		t.Fatalf("查询日统计失败: %v", err)
	}
	if stats.Views != 2 || stats.AddToCart != 1 || stats.Purchases != 1 {
		t.Errorf("日统计计数不符: %+v", stats)
	}
	if stats.RevenueAmount != 2000 {
		t.Errorf("期望营收 2000 分, 实际 %d", stats.RevenueAmount)
	}
	if stats.UniqueVisitors != 2 {
		t.Errorf("期望去重访客 2, 实际 %d", stats.UniqueVisitors)
	}

	// 幂等：重跑同一天不翻倍
	if err := svc.ComputeDailyStats(ctx, time.Now()); err != nil {
		t.Fatalf("重跑折叠失败: %v", err)
	}
	var count int64
	db.Model(&model.DailyProductStats{}).Where("product_id = ?", product.ID).Count(&count)
	if count != 1 {
		t.Errorf("期望 1 行日统计, 实际 %d", count)
	}
	db.Where("product_id = ?", product.ID).First(&stats)
	if stats.Views != 2 {
		t.Errorf("重跑后计数应不变, 实际 views=%d", stats.Views)
	}

	// 分类维度同样落表
	var catStats model.DailyCategoryStats
	if err := db.Where("category_id = ?", product.CategoryID).First(&catStats).Error; err != nil {
		t.Fatalf("查询分类日统计失败: %v", err)
	}
	if catStats.Views != 2 || catStats.Purchases != 1 || catStats.RevenueAmount != 2000 {
		t.Errorf("分类日统计不符: %+v", catStats)
	}
}
