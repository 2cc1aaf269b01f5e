package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/repository"
)

// ==================== AnalyticsService 分析服务 ====================

// AnalyticsService 交互分析服务（管理端只读）
type AnalyticsService struct {
	analyticsRepo   repository.AnalyticsRepository
	interactionRepo repository.InteractionRepository
}

// NewAnalyticsService 创建分析服务
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, interactionRepo repository.InteractionRepository) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo:   analyticsRepo,
		interactionRepo: interactionRepo,
	}
}

// parseDateRange 解析日期过滤，结束日期含当天整天
func parseDateRange(startDate, endDate string) (start, end *time.Time) {
	if startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			start = &t
		}
	}
	if endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			e := t.Add(24*time.Hour - time.Second)
			end = &e
		}
	}
	return start, end
}

// ==================== 总览 ====================

// Overview 交互总览：各类型计数、去重访客数、营收
// 营收口径为购买事件元数据数量 × 商品当前实际售价
func (s *AnalyticsService) Overview(ctx context.Context, req *dto.AnalyticsQueryRequest) (*dto.OverviewResponse, error) {
	start, end := parseDateRange(req.StartDate, req.EndDate)

	counts, err := s.analyticsRepo.CountByType(ctx, repository.InteractionFilter{
		ProductID:  req.ProductID,
		CategoryID: req.CategoryID,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		return nil, err
	}

	users, sessions, err := s.analyticsRepo.UniqueVisitors(ctx, start, end)
	if err != nil {
		return nil, err
	}

	revenue, err := s.revenue(ctx, start, end)
	if err != nil {
		return nil, err
	}

	resp := &dto.OverviewResponse{
		Counts:         map[string]int64{},
		UniqueUsers:    users,
		UniqueSessions: sessions,
		Revenue:        float64(revenue) / 100,
	}
	for _, row := range counts {
		resp.Counts[row.InteractionType] = row.Count
	}
	return resp, nil
}

// revenue 按购买事件计算营收（分）
func (s *AnalyticsService) revenue(ctx context.Context, start, end *time.Time) (int64, error) {
	purchases, err := s.analyticsRepo.PurchaseInteractions(ctx, start, end)
	if err != nil {
		return 0, err
	}

	var total int64
	for i := range purchases {
		p := &purchases[i]
		if p.Product == nil {
			continue
		}
		total += p.Product.FinalPriceAmount() * int64(p.MetadataQuantity())
	}
	return total, nil
}

// ==================== Top-N 与时间序列 ====================

// TopProducts 某类交互下的 Top-N 商品
func (s *AnalyticsService) TopProducts(ctx context.Context, req *dto.AnalyticsQueryRequest) ([]dto.TopProductVO, error) {
	interactionType := req.InteractionType
	if interactionType == "" {
		interactionType = model.InteractionView
	}
	if !model.ValidInteractionType(interactionType) {
		return nil, ErrInvalidInteractionType
	}

	start, end := parseDateRange(req.StartDate, req.EndDate)
	rows, err := s.analyticsRepo.TopProducts(ctx, interactionType, req.CategoryID, start, end, req.Limit)
	if err != nil {
		return nil, err
	}

	list := make([]dto.TopProductVO, 0, len(rows))
	for _, row := range rows {
		list = append(list, dto.TopProductVO{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Count:       row.Count,
		})
	}
	return list, nil
}

// TimeSeries 某类交互的按天时间序列
func (s *AnalyticsService) TimeSeries(ctx context.Context, req *dto.AnalyticsQueryRequest) ([]dto.TimeSeriesPoint, error) {
	interactionType := req.InteractionType
	if interactionType == "" {
		interactionType = model.InteractionView
	}
	if !model.ValidInteractionType(interactionType) {
		return nil, ErrInvalidInteractionType
	}

	start, end := parseDateRange(req.StartDate, req.EndDate)
	rows, err := s.analyticsRepo.TimeSeries(ctx, interactionType, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]dto.TimeSeriesPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, dto.TimeSeriesPoint{Date: row.Date, Count: row.Count})
	}
	return points, nil
}

// ==================== 漏斗 ====================

// Funnel 浏览 → 加车 → 购买转化漏斗
// 上一阶段计数为 0 时转化率记 0，避免除零
func (s *AnalyticsService) Funnel(ctx context.Context, req *dto.AnalyticsQueryRequest) (*dto.FunnelResponse, error) {
	start, end := parseDateRange(req.StartDate, req.EndDate)
	counts, err := s.analyticsRepo.Funnel(ctx, start, end)
	if err != nil {
		return nil, err
	}

	resp := &dto.FunnelResponse{
		Viewed:      counts.Viewed,
		AddedToCart: counts.AddedToCart,
		Purchased:   counts.Purchased,
	}
	if counts.Viewed > 0 {
		resp.ViewToCartRate = round2(float64(counts.AddedToCart) / float64(counts.Viewed) * 100)
		resp.OverallRate = round2(float64(counts.Purchased) / float64(counts.Viewed) * 100)
	}
	if counts.AddedToCart > 0 {
		resp.CartToPurchaseRate = round2(float64(counts.Purchased) / float64(counts.AddedToCart) * 100)
		resp.AbandonmentRate = round2(float64(counts.AddedToCart-counts.Purchased) / float64(counts.AddedToCart) * 100)
	}
	return resp, nil
}

// BehaviorLists 行为流失榜：看了没买、加车又移除
func (s *AnalyticsService) BehaviorLists(ctx context.Context, req *dto.AnalyticsQueryRequest) (*dto.BehaviorListsResponse, error) {
	start, end := parseDateRange(req.StartDate, req.EndDate)

	viewed, err := s.analyticsRepo.ViewedNotPurchased(ctx, start, end, req.Limit)
	if err != nil {
		return nil, err
	}
	removed, err := s.analyticsRepo.AddedThenRemoved(ctx, start, end, req.Limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.BehaviorListsResponse{
		ViewedNotPurchased: make([]dto.TopProductVO, 0, len(viewed)),
		AddedThenRemoved:   make([]dto.TopProductVO, 0, len(removed)),
	}
	for _, row := range viewed {
		resp.ViewedNotPurchased = append(resp.ViewedNotPurchased, dto.TopProductVO{
			ProductID: row.ProductID, ProductName: row.ProductName, Count: row.Count,
		})
	}
	for _, row := range removed {
		resp.AddedThenRemoved = append(resp.AddedThenRemoved, dto.TopProductVO{
			ProductID: row.ProductID, ProductName: row.ProductName, Count: row.Count,
		})
	}
	return resp, nil
}

// CategoryAnalytics 分类维度交互计数
func (s *AnalyticsService) CategoryAnalytics(ctx context.Context, req *dto.AnalyticsQueryRequest) ([]dto.CategoryCountVO, error) {
	start, end := parseDateRange(req.StartDate, req.EndDate)
	rows, err := s.analyticsRepo.CategoryTypeCounts(ctx, start, end)
	if err != nil {
		return nil, err
	}

	list := make([]dto.CategoryCountVO, 0, len(rows))
	for _, row := range rows {
		if req.CategoryID > 0 && row.CategoryID != req.CategoryID {
			continue
		}
		list = append(list, dto.CategoryCountVO{
			CategoryID:      row.CategoryID,
			CategoryName:    row.CategoryName,
			InteractionType: row.InteractionType,
			Count:           row.Count,
		})
	}
	return list, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// ==================== 事件明细 ====================

// ListInteractions 交互事件明细列表
func (s *AnalyticsService) ListInteractions(ctx context.Context, req *dto.AnalyticsQueryRequest, page, pageSize int) (*dto.ListInteractionsResponse, error) {
	start, end := parseDateRange(req.StartDate, req.EndDate)
	interactions, total, err := s.interactionRepo.List(ctx, repository.InteractionFilter{
		ProductID:       req.ProductID,
		CategoryID:      req.CategoryID,
		InteractionType: req.InteractionType,
		StartDate:       start,
		EndDate:         end,
		Page:            page,
		PageSize:        pageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]dto.InteractionVO, 0, len(interactions))
	for i := range interactions {
		list = append(list, *toInteractionVO(&interactions[i]))
	}
	return &dto.ListInteractionsResponse{Total: total, List: list}, nil
}

func toInteractionVO(p *model.ProductInteraction) *dto.InteractionVO {
	vo := &dto.InteractionVO{
		ID:              p.ID,
		ProductID:       p.ProductID,
		InteractionType: p.InteractionType,
		UserID:          p.UserID,
		SessionKey:      p.SessionKey,
		Metadata:        p.Metadata,
		CreatedAt:       p.CreatedAt,
	}
	if p.Product != nil {
		vo.ProductName = p.Product.Name
	}
	return vo
}

// ==================== CSV 导出 ====================

// ExportCSV 按 scope 导出 CSV：事件明细、商品聚合或分类聚合
func (s *AnalyticsService) ExportCSV(ctx context.Context, w io.Writer, req *dto.AnalyticsQueryRequest) error {
	switch req.Scope {
	case "", "interactions":
		return s.exportInteractionsCSV(ctx, w, req)
	case "products":
		return s.exportProductsCSV(ctx, w, req)
	case "categories":
		return s.exportCategoriesCSV(ctx, w, req)
	default:
		return ErrInvalidExportScope
	}
}

func (s *AnalyticsService) exportInteractionsCSV(ctx context.Context, w io.Writer, req *dto.AnalyticsQueryRequest) error {
	start, end := parseDateRange(req.StartDate, req.EndDate)
	interactions, _, err := s.interactionRepo.List(ctx, repository.InteractionFilter{
		ProductID:       req.ProductID,
		CategoryID:      req.CategoryID,
		InteractionType: req.InteractionType,
		StartDate:       start,
		EndDate:         end,
		Page:            1,
		PageSize:        10000,
	})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"id", "product_id", "product_name", "interaction_type", "user_id", "session_key", "quantity", "created_at"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range interactions {
		p := &interactions[i]
		userID := ""
		if p.UserID != nil {
			userID = strconv.FormatInt(*p.UserID, 10)
		}
		sessionKey := ""
		if p.SessionKey != nil {
			sessionKey = *p.SessionKey
		}
		productName := ""
		if p.Product != nil {
			productName = p.Product.Name
		}
		record := []string{
			strconv.FormatInt(p.ID, 10),
			strconv.FormatInt(p.ProductID, 10),
			productName,
			p.InteractionType,
			userID,
			sessionKey,
			strconv.Itoa(p.MetadataQuantity()),
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *AnalyticsService) exportProductsCSV(ctx context.Context, w io.Writer, req *dto.AnalyticsQueryRequest) error {
	start, end := exportRange(req)
	rows, err := s.analyticsRepo.ProductTypeCounts(ctx, start, end)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"product_id", "category_id", "interaction_type", "count"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ProductID, 10),
			strconv.FormatInt(row.CategoryID, 10),
			row.InteractionType,
			strconv.FormatInt(row.Count, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *AnalyticsService) exportCategoriesCSV(ctx context.Context, w io.Writer, req *dto.AnalyticsQueryRequest) error {
	start, end := parseDateRange(req.StartDate, req.EndDate)
	rows, err := s.analyticsRepo.CategoryTypeCounts(ctx, start, end)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"category_id", "category_name", "interaction_type", "count"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.CategoryID, 10),
			row.CategoryName,
			row.InteractionType,
			strconv.FormatInt(row.Count, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// exportRange 导出聚合的闭区间，未指定时覆盖全部历史
func exportRange(req *dto.AnalyticsQueryRequest) (time.Time, time.Time) {
	start, end := parseDateRange(req.StartDate, req.EndDate)
	s := time.Unix(0, 0)
	e := time.Now().Add(24 * time.Hour)
	if start != nil {
		s = *start
	}
	if end != nil {
		e = *end
	}
	return s, e
}

// ==================== 日统计 ====================

// ComputeDailyStats 折叠某一天的交互事件为商品/分类日统计
// 幂等：同一天重复执行按 (product, date) 冲突覆盖
func (s *AnalyticsService) ComputeDailyStats(ctx context.Context, day time.Time) error {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	counts, err := s.analyticsRepo.ProductTypeCounts(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}
	visitors, err := s.analyticsRepo.ProductUniqueVisitors(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}
	startPtr, endPtr := dayStart, dayEnd
	purchases, err := s.analyticsRepo.PurchaseInteractions(ctx, &startPtr, &endPtr)
	if err != nil {
		return err
	}

	// 商品维度营收
	revenueByProduct := map[int64]int64{}
	for i := range purchases {
		p := &purchases[i]
		if p.Product == nil {
			continue
		}
		revenueByProduct[p.ProductID] += p.Product.FinalPriceAmount() * int64(p.MetadataQuantity())
	}

	visitorsByProduct := map[int64]int64{}
	for _, row := range visitors {
		visitorsByProduct[row.ProductID] = row.Count
	}

	productStats := map[int64]*model.DailyProductStats{}
	categoryStats := map[int64]*model.DailyCategoryStats{}
	categoryByProduct := map[int64]int64{}

	for _, row := range counts {
		categoryByProduct[row.ProductID] = row.CategoryID

		ps, ok := productStats[row.ProductID]
		if !ok {
			ps = &model.DailyProductStats{ProductID: row.ProductID, Date: dayStart}
			productStats[row.ProductID] = ps
		}
		cs, ok := categoryStats[row.CategoryID]
		if !ok {
			cs = &model.DailyCategoryStats{CategoryID: row.CategoryID, Date: dayStart}
			categoryStats[row.CategoryID] = cs
		}

		switch row.InteractionType {
		case model.InteractionView:
			ps.Views += int(row.Count)
			cs.Views += int(row.Count)
		case model.InteractionClick:
			ps.Clicks += int(row.Count)
			cs.Clicks += int(row.Count)
		case model.InteractionAddToCart:
			ps.AddToCart += int(row.Count)
			cs.AddToCart += int(row.Count)
		case model.InteractionRemoveFromCart:
			ps.RemoveFromCart += int(row.Count)
		case model.InteractionPurchase:
			ps.Purchases += int(row.Count)
			cs.Purchases += int(row.Count)
		}
	}

	for productID, ps := range productStats {
		ps.RevenueAmount = revenueByProduct[productID]
		ps.UniqueVisitors = int(visitorsByProduct[productID])
		if err := s.analyticsRepo.UpsertDailyProductStats(ctx, ps); err != nil {
			return err
		}

		if categoryID := categoryByProduct[productID]; categoryID > 0 {
			if cs, ok := categoryStats[categoryID]; ok {
				cs.RevenueAmount += revenueByProduct[productID]
			}
		}
	}
	for _, cs := range categoryStats {
		if err := s.analyticsRepo.UpsertDailyCategoryStats(ctx, cs); err != nil {
			return err
		}
	}
	return nil
}

// ListDailyStats 商品日统计列表
func (s *AnalyticsService) ListDailyStats(ctx context.Context, req *dto.AnalyticsQueryRequest) ([]dto.DailyStatsVO, error) {
	start, end := parseDateRange(req.StartDate, req.EndDate)
	rows, err := s.analyticsRepo.ListDailyProductStats(ctx, req.ProductID, start, end)
	if err != nil {
		return nil, err
	}

	list := make([]dto.DailyStatsVO, 0, len(rows))
	for _, row := range rows {
		list = append(list, dto.DailyStatsVO{
			ProductID:      row.ProductID,
			Date:           row.Date.Format("2006-01-02"),
			Views:          row.Views,
			Clicks:         row.Clicks,
			AddToCart:      row.AddToCart,
			RemoveFromCart: row.RemoveFromCart,
			Purchases:      row.Purchases,
			Revenue:        float64(row.RevenueAmount) / 100,
			UniqueVisitors: row.UniqueVisitors,
		})
	}
	return list, nil
}
