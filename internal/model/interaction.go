package model

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// ==================== 交互类型常量 ====================

// InteractionType 商品交互类型
const (
	InteractionView           = "view"             // 浏览
	InteractionClick          = "click"            // 点击
	InteractionAddToCart      = "add_to_cart"      // 加入购物车
	InteractionRemoveFromCart = "remove_from_cart" // 移出购物车
	InteractionPurchase       = "purchase"         // 购买
	InteractionWishlistAdd    = "wishlist_add"     // 加入心愿单
	InteractionWishlistRemove = "wishlist_remove"  // 移出心愿单
)

// ValidInteractionType 校验交互类型枚举
func ValidInteractionType(t string) bool {
	switch t {
	case InteractionView, InteractionClick, InteractionAddToCart,
		InteractionRemoveFromCart, InteractionPurchase,
		InteractionWishlistAdd, InteractionWishlistRemove:
		return true
	}
	return false
}

// ==================== ProductInteraction 商品交互事件 ====================

// ProductInteraction 商品交互事件，只追加不修改，所有分析指标的事实来源
type ProductInteraction struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	ProductID int64 `gorm:"not null;index:idx_interaction_product_type"`

	// 访客身份（user_id / session_key 二选一）
	UserID     *int64  `gorm:"index"`
	SessionKey *string `gorm:"size:40;index"`

	// 事件
	InteractionType string            `gorm:"size:20;not null;index:idx_interaction_product_type"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb"` // 数量、订单号等附加信息

	// 请求上下文
	IPAddress string `gorm:"size:45"`
	UserAgent string `gorm:"type:text"`
	Referrer  string `gorm:"size:500"`

	CreatedAt time.Time `gorm:"index"`

	// 关联
	Product *Product `gorm:"foreignKey:ProductID"`
}

func (*ProductInteraction) TableName() string {
	return "product_interactions"
}

// MetadataQuantity 从 metadata 中取数量，缺省为 1
func (p *ProductInteraction) MetadataQuantity() int {
	if p.Metadata == nil {
		return 1
	}
	// JSONMap 从数据库读回时数字是 json.Number，内存写入时才是 int/float64
	switch v := p.Metadata["quantity"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 1
}

// ==================== UserBehaviorSummary 访客行为汇总 ====================

// UserBehaviorSummary 每 (访客, 商品) 一行的行为物化汇总
// (user_id, product_id) 和 (session_key, product_id) 各自唯一；
// 登录合并只作用于购物车，行为历史不做合并
type UserBehaviorSummary struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	UserID    *int64  `gorm:"uniqueIndex:idx_behavior_user_product"`
	SessionKey *string `gorm:"size:40;uniqueIndex:idx_behavior_session_product"`
	ProductID int64   `gorm:"not null;index;uniqueIndex:idx_behavior_user_product;uniqueIndex:idx_behavior_session_product"`

	// 行为标记（added_to_cart/removed_from_cart 反映当前意向而非历史）
	Viewed          bool `gorm:"default:false;index"`
	Clicked         bool `gorm:"default:false"`
	AddedToCart     bool `gorm:"default:false;index"`
	RemovedFromCart bool `gorm:"default:false"`
	Purchased       bool `gorm:"default:false;index"`

	// 时间戳
	FirstViewAt       *time.Time
	LastViewAt        *time.Time
	AddedToCartAt     *time.Time
	RemovedFromCartAt *time.Time
	PurchasedAt       *time.Time

	// 计数
	ViewCount       int `gorm:"default:0"`
	CartAddCount    int `gorm:"default:0"`
	CartRemoveCount int `gorm:"default:0"`
	PurchaseCount   int `gorm:"default:0"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`

	// 关联
	Product *Product `gorm:"foreignKey:ProductID"`
}

func (*UserBehaviorSummary) TableName() string {
	return "user_behavior_summary"
}

// ==================== DailyProductStats 商品日统计 ====================

// DailyProductStats 商品维度的日聚合统计，由定时任务写入
type DailyProductStats struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_daily_product_date"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_product_date"`

	Views           int   `gorm:"default:0"`
	Clicks          int   `gorm:"default:0"`
	AddToCart       int   `gorm:"default:0"`
	RemoveFromCart  int   `gorm:"default:0"`
	Purchases       int   `gorm:"default:0"`
	RevenueAmount   int64 `gorm:"default:0"` // 分
	UniqueVisitors  int   `gorm:"default:0"`
}

func (*DailyProductStats) TableName() string {
	return "daily_product_stats"
}

// ==================== DailyCategoryStats 分类日统计 ====================

// DailyCategoryStats 分类维度的日聚合统计
type DailyCategoryStats struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	CategoryID int64     `gorm:"not null;uniqueIndex:idx_daily_category_date"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_category_date"`

	Views         int   `gorm:"default:0"`
	Clicks        int   `gorm:"default:0"`
	AddToCart     int   `gorm:"default:0"`
	Purchases     int   `gorm:"default:0"`
	RevenueAmount int64 `gorm:"default:0"`
}

func (*DailyCategoryStats) TableName() string {
	return "daily_category_stats"
}
