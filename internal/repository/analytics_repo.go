package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront_v1_202509/internal/model"
)

// ==================== 聚合结果行 ====================

// TypeCount 按交互类型计数
type TypeCount struct {
	InteractionType string
	Count           int64
}

// ProductCount 按商品计数（Top-N）
type ProductCount struct {
	ProductID   int64
	ProductName string
	Count       int64
}

// DateCount 按日期计数（时间序列）
type DateCount struct {
	Date  string
	Count int64
}

// ProductTypeCount 商品 × 交互类型计数（日统计折叠用）
type ProductTypeCount struct {
	ProductID       int64
	CategoryID      int64
	InteractionType string
	Count           int64
}

// ProductVisitorCount 商品维度去重访客数
type ProductVisitorCount struct {
	ProductID int64
	Count     int64
}

// CategoryTypeCount 分类 × 交互类型计数
type CategoryTypeCount struct {
	CategoryID      int64
	CategoryName    string
	InteractionType string
	Count           int64
}

// FunnelCounts 漏斗各阶段去重访客数
type FunnelCounts struct {
	Viewed      int64
	AddedToCart int64
	Purchased   int64
}

// ==================== AnalyticsRepository 分析读侧仓储 ====================

// AnalyticsRepository 聚合查询仓储接口，只读
type AnalyticsRepository interface {
	CountByType(ctx context.Context, filter InteractionFilter) ([]TypeCount, error)
	TopProducts(ctx context.Context, interactionType string, categoryID int64, start, end *time.Time, limit int) ([]ProductCount, error)
	TimeSeries(ctx context.Context, interactionType string, start, end *time.Time) ([]DateCount, error)
	UniqueVisitors(ctx context.Context, start, end *time.Time) (users int64, sessions int64, err error)
	Funnel(ctx context.Context, start, end *time.Time) (*FunnelCounts, error)
	ViewedNotPurchased(ctx context.Context, start, end *time.Time, limit int) ([]ProductCount, error)
	AddedThenRemoved(ctx context.Context, start, end *time.Time, limit int) ([]ProductCount, error)
	CategoryTypeCounts(ctx context.Context, start, end *time.Time) ([]CategoryTypeCount, error)
	PurchaseInteractions(ctx context.Context, start, end *time.Time) ([]model.ProductInteraction, error)
	ProductTypeCounts(ctx context.Context, start, end time.Time) ([]ProductTypeCount, error)
	ProductUniqueVisitors(ctx context.Context, start, end time.Time) ([]ProductVisitorCount, error)

	UpsertDailyProductStats(ctx context.Context, stats *model.DailyProductStats) error
	UpsertDailyCategoryStats(ctx context.Context, stats *model.DailyCategoryStats) error
	ListDailyProductStats(ctx context.Context, productID int64, start, end *time.Time) ([]model.DailyProductStats, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository 创建分析仓储
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountByType(ctx context.Context, filter InteractionFilter) ([]TypeCount, error) {
	var rows []TypeCount
	db := applyInteractionFilter(r.db.WithContext(ctx).Model(&model.ProductInteraction{}), filter)
	err := db.Select("product_interactions.interaction_type, COUNT(*) AS count").
		Group("product_interactions.interaction_type").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) TopProducts(ctx context.Context, interactionType string, categoryID int64, start, end *time.Time, limit int) ([]ProductCount, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ProductCount
	db := r.db.WithContext(ctx).Model(&model.ProductInteraction{}).
		Joins("JOIN products ON products.id = product_interactions.product_id").
		Where("product_interactions.interaction_type = ?", interactionType)
	if categoryID > 0 {
		db = db.Where("products.category_id = ?", categoryID)
	}
	if start != nil {
		db = db.Where("product_interactions.created_at >= ?", start)
	}
	if end != nil {
		db = db.Where("product_interactions.created_at <= ?", end)
	}
	err := db.Select("product_interactions.product_id, products.name AS product_name, COUNT(*) AS count").
		Group("product_interactions.product_id, products.name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TimeSeries 按天统计某类交互，DATE() 在 postgres 与 sqlite 下语义一致
func (r *analyticsRepository) TimeSeries(ctx context.Context, interactionType string, start, end *time.Time) ([]DateCount, error) {
	var rows []DateCount
	db := r.db.WithContext(ctx).Model(&model.ProductInteraction{}).
		Where("interaction_type = ?", interactionType)
	if start != nil {
		db = db.Where("created_at >= ?", start)
	}
	if end != nil {
		db = db.Where("created_at <= ?", end)
	}
	err := db.Select("DATE(created_at) AS date, COUNT(*) AS count").
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) UniqueVisitors(ctx context.Context, start, end *time.Time) (int64, int64, error) {
	base := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.ProductInteraction{})
		if start != nil {
			db = db.Where("created_at >= ?", start)
		}
		if end != nil {
			db = db.Where("created_at <= ?", end)
		}
		return db
	}

	var users int64
	if err := base().Where("user_id IS NOT NULL").
		Distinct("user_id").Count(&users).Error; err != nil {
		return 0, 0, err
	}

	var sessions int64
	if err := base().Where("user_id IS NULL AND session_key IS NOT NULL").
		Distinct("session_key").Count(&sessions).Error; err != nil {
		return 0, 0, err
	}

	return users, sessions, nil
}

// Funnel 基于行为汇总表统计各阶段访客数
func (r *analyticsRepository) Funnel(ctx context.Context, start, end *time.Time) (*FunnelCounts, error) {
	base := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.UserBehaviorSummary{})
		if start != nil {
			db = db.Where("updated_at >= ?", start)
		}
		if end != nil {
			db = db.Where("updated_at <= ?", end)
		}
		return db
	}

	var counts FunnelCounts
	if err := base().Where("viewed = ?", true).Count(&counts.Viewed).Error; err != nil {
		return nil, err
	}
	if err := base().Where("added_to_cart = ?", true).Count(&counts.AddedToCart).Error; err != nil {
		return nil, err
	}
	if err := base().Where("purchased = ?", true).Count(&counts.Purchased).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}

// behaviorProductCounts 按行为汇总标记统计各商品命中的访客数
func (r *analyticsRepository) behaviorProductCounts(ctx context.Context, cond string, start, end *time.Time, limit int) ([]ProductCount, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ProductCount
	db := r.db.WithContext(ctx).Model(&model.UserBehaviorSummary{}).
		Joins("JOIN products ON products.id = user_behavior_summary.product_id").
		Where(cond)
	if start != nil {
		db = db.Where("user_behavior_summary.updated_at >= ?", start)
	}
	if end != nil {
		db = db.Where("user_behavior_summary.updated_at <= ?", end)
	}
	err := db.Select("user_behavior_summary.product_id, products.name AS product_name, COUNT(*) AS count").
		Group("user_behavior_summary.product_id, products.name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ViewedNotPurchased 看了但没买的商品榜（意向流失）
func (r *analyticsRepository) ViewedNotPurchased(ctx context.Context, start, end *time.Time, limit int) ([]ProductCount, error) {
	return r.behaviorProductCounts(ctx, "viewed AND NOT purchased", start, end, limit)
}

// AddedThenRemoved 加车后又移除的商品榜（弃购信号）
func (r *analyticsRepository) AddedThenRemoved(ctx context.Context, start, end *time.Time, limit int) ([]ProductCount, error) {
	return r.behaviorProductCounts(ctx, "removed_from_cart AND NOT purchased", start, end, limit)
}

// CategoryTypeCounts 分类 × 交互类型计数（分类分析与导出用）
func (r *analyticsRepository) CategoryTypeCounts(ctx context.Context, start, end *time.Time) ([]CategoryTypeCount, error) {
	var rows []CategoryTypeCount
	db := r.db.WithContext(ctx).Model(&model.ProductInteraction{}).
		Joins("JOIN products ON products.id = product_interactions.product_id").
		Joins("JOIN categories ON categories.id = products.category_id")
	if start != nil {
		db = db.Where("product_interactions.created_at >= ?", start)
	}
	if end != nil {
		db = db.Where("product_interactions.created_at <= ?", end)
	}
	err := db.Select("products.category_id, categories.name AS category_name, product_interactions.interaction_type, COUNT(*) AS count").
		Group("products.category_id, categories.name, product_interactions.interaction_type").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// PurchaseInteractions 购买事件明细，营收口径按事件元数据数量 × 商品当前售价
func (r *analyticsRepository) PurchaseInteractions(ctx context.Context, start, end *time.Time) ([]model.ProductInteraction, error) {
	var interactions []model.ProductInteraction
	db := r.db.WithContext(ctx).
		Where("interaction_type = ?", model.InteractionPurchase)
	if start != nil {
		db = db.Where("created_at >= ?", start)
	}
	if end != nil {
		db = db.Where("created_at <= ?", end)
	}
	err := db.Preload("Product").Find(&interactions).Error
	return interactions, err
}

// ProductTypeCounts 一段时间内商品 × 交互类型的计数，带所属分类
func (r *analyticsRepository) ProductTypeCounts(ctx context.Context, start, end time.Time) ([]ProductTypeCount, error) {
	var rows []ProductTypeCount
	err := r.db.WithContext(ctx).Model(&model.ProductInteraction{}).
		Joins("JOIN products ON products.id = product_interactions.product_id").
		Where("product_interactions.created_at >= ? AND product_interactions.created_at < ?", start, end).
		Select("product_interactions.product_id, products.category_id, product_interactions.interaction_type, COUNT(*) AS count").
		Group("product_interactions.product_id, products.category_id, product_interactions.interaction_type").
		Scan(&rows).Error
	return rows, err
}

// ProductUniqueVisitors 一段时间内商品维度的去重访客数
// 账号访客按 user_id 去重，匿名访客按 session_key 去重
func (r *analyticsRepository) ProductUniqueVisitors(ctx context.Context, start, end time.Time) ([]ProductVisitorCount, error) {
	var rows []ProductVisitorCount
	err := r.db.WithContext(ctx).Model(&model.ProductInteraction{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Select("product_id, COUNT(DISTINCT COALESCE(CAST(user_id AS TEXT), session_key)) AS count").
		Group("product_id").
		Scan(&rows).Error
	return rows, err
}

// ==================== 日统计写入 ====================

func (r *analyticsRepository) UpsertDailyProductStats(ctx context.Context, stats *model.DailyProductStats) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"views", "clicks", "add_to_cart", "remove_from_cart",
			"purchases", "revenue_amount", "unique_visitors",
		}),
	}).Create(stats).Error
}

func (r *analyticsRepository) UpsertDailyCategoryStats(ctx context.Context, stats *model.DailyCategoryStats) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "category_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"views", "clicks", "add_to_cart", "purchases", "revenue_amount",
		}),
	}).Create(stats).Error
}

func (r *analyticsRepository) ListDailyProductStats(ctx context.Context, productID int64, start, end *time.Time) ([]model.DailyProductStats, error) {
	var rows []model.DailyProductStats
	db := r.db.WithContext(ctx).Model(&model.DailyProductStats{})
	if productID > 0 {
		db = db.Where("product_id = ?", productID)
	}
	if start != nil {
		db = db.Where("date >= ?", start)
	}
	if end != nil {
		db = db.Where("date <= ?", end)
	}
	err := db.Order("date ASC").Find(&rows).Error
	return rows, err
}
