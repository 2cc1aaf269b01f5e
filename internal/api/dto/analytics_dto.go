package dto

import "time"

// ==================== 交互上报 ====================

// TrackInteractionRequest 交互事件上报请求
type TrackInteractionRequest struct {
	ProductID       int64                  `json:"product_id" binding:"required"`
	InteractionType string                 `json:"interaction_type" binding:"required"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// BehaviorSummaryVO 访客对单个商品的行为汇总
type BehaviorSummaryVO struct {
	ProductID       int64 `json:"product_id"`
	Viewed          bool  `json:"viewed"`
	Clicked         bool  `json:"clicked"`
	AddedToCart     bool  `json:"added_to_cart"`
	RemovedFromCart bool  `json:"removed_from_cart"`
	Purchased       bool  `json:"purchased"`

	ViewCount       int `json:"view_count"`
	CartAddCount    int `json:"cart_add_count"`
	CartRemoveCount int `json:"cart_remove_count"`
	PurchaseCount   int `json:"purchase_count"`

	FirstViewAt   *time.Time `json:"first_view_at,omitempty"`
	LastViewAt    *time.Time `json:"last_view_at,omitempty"`
	AddedToCartAt *time.Time `json:"added_to_cart_at,omitempty"`
	PurchasedAt   *time.Time `json:"purchased_at,omitempty"`
}

// ==================== 分析查询 ====================

// AnalyticsQueryRequest 分析查询通用过滤
type AnalyticsQueryRequest struct {
	ProductID       int64  `form:"product_id"`
	CategoryID      int64  `form:"category_id"`
	InteractionType string `form:"interaction_type"`
	StartDate       string `form:"start_date"` // 2024-01-01
	EndDate         string `form:"end_date"`
	Limit           int    `form:"limit,default=10"`
	Scope           string `form:"scope"` // 导出范围 interactions/products/categories
}

// OverviewResponse 总览响应
type OverviewResponse struct {
	Counts         map[string]int64 `json:"counts"` // 按交互类型计数
	UniqueUsers    int64            `json:"unique_users"`
	UniqueSessions int64            `json:"unique_sessions"`
	Revenue        float64          `json:"revenue"`
}

// TopProductVO Top-N 商品
type TopProductVO struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Count       int64  `json:"count"`
}

// TimeSeriesPoint 时间序列点
type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// FunnelResponse 转化漏斗响应
type FunnelResponse struct {
	Viewed      int64 `json:"viewed"`
	AddedToCart int64 `json:"added_to_cart"`
	Purchased   int64 `json:"purchased"`

	// 各阶段转化率（%），上一阶段为 0 时记 0
	ViewToCartRate     float64 `json:"view_to_cart_rate"`
	CartToPurchaseRate float64 `json:"cart_to_purchase_rate"`
	OverallRate        float64 `json:"overall_rate"`
	AbandonmentRate    float64 `json:"abandonment_rate"` // 加车后未购买占比
}

// BehaviorListsResponse 行为流失榜响应
type BehaviorListsResponse struct {
	ViewedNotPurchased []TopProductVO `json:"viewed_not_purchased"`
	AddedThenRemoved   []TopProductVO `json:"added_then_removed"`
}

// CategoryCountVO 分类维度交互计数
type CategoryCountVO struct {
	CategoryID      int64  `json:"category_id"`
	CategoryName    string `json:"category_name"`
	InteractionType string `json:"interaction_type"`
	Count           int64  `json:"count"`
}

// InteractionVO 交互事件视图对象
type InteractionVO struct {
	ID              int64                  `json:"id"`
	ProductID       int64                  `json:"product_id"`
	ProductName     string                 `json:"product_name,omitempty"`
	InteractionType string                 `json:"interaction_type"`
	UserID          *int64                 `json:"user_id,omitempty"`
	SessionKey      *string                `json:"session_key,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// ListInteractionsResponse 交互事件列表响应
type ListInteractionsResponse struct {
	Total int64           `json:"total"`
	List  []InteractionVO `json:"list"`
}

// DailyStatsVO 商品日统计视图对象
type DailyStatsVO struct {
	ProductID      int64   `json:"product_id"`
	Date           string  `json:"date"`
	Views          int     `json:"views"`
	Clicks         int     `json:"clicks"`
	AddToCart      int     `json:"add_to_cart"`
	RemoveFromCart int     `json:"remove_from_cart"`
	Purchases      int     `json:"purchases"`
	Revenue        float64 `json:"revenue"`
	UniqueVisitors int     `json:"unique_visitors"`
}
