package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront_v1_202509/internal/model"
)

// ==================== 过滤条件 ====================

// InteractionFilter 交互事件过滤条件
type InteractionFilter struct {
	ProductID       int64
	CategoryID      int64
	InteractionType string
	StartDate       *time.Time
	EndDate         *time.Time
	Page            int
	PageSize        int
}

// ==================== InteractionRepository 交互事件仓储 ====================

// InteractionRepository 交互事件仓储接口（只追加）
type InteractionRepository interface {
	Create(ctx context.Context, interaction *model.ProductInteraction) error
	List(ctx context.Context, filter InteractionFilter) ([]model.ProductInteraction, int64, error)
}

type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository 创建交互事件仓储
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Create(ctx context.Context, interaction *model.ProductInteraction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}

// applyInteractionFilter 应用交互过滤条件
func applyInteractionFilter(db *gorm.DB, filter InteractionFilter) *gorm.DB {
	if filter.ProductID > 0 {
		db = db.Where("product_interactions.product_id = ?", filter.ProductID)
	}
	if filter.CategoryID > 0 {
		db = db.Joins("JOIN products ON products.id = product_interactions.product_id").
			Where("products.category_id = ?", filter.CategoryID)
	}
	if filter.InteractionType != "" {
		db = db.Where("product_interactions.interaction_type = ?", filter.InteractionType)
	}
	if filter.StartDate != nil {
		db = db.Where("product_interactions.created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("product_interactions.created_at <= ?", filter.EndDate)
	}
	return db
}

func (r *interactionRepository) List(ctx context.Context, filter InteractionFilter) ([]model.ProductInteraction, int64, error) {
	var interactions []model.ProductInteraction
	var total int64

	db := applyInteractionFilter(r.db.WithContext(ctx).Model(&model.ProductInteraction{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.Preload("Product").
		Order("product_interactions.created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&interactions).Error

	return interactions, total, err
}

// ==================== BehaviorRepository 行为汇总仓储 ====================

// BehaviorRepository 访客行为汇总仓储接口
type BehaviorRepository interface {
	GetOrCreate(ctx context.Context, visitor model.VisitorIdentity, productID int64) (*model.UserBehaviorSummary, error)
	Get(ctx context.Context, visitor model.VisitorIdentity, productID int64) (*model.UserBehaviorSummary, error)

	// ApplyInteraction 将一条交互事件折叠进汇总行
	// 用单条带 SQL 表达式的 UPDATE 完成计数与标记更新，
	// 并发 view 不会丢增量（等价于行锁下的读改写）
	ApplyInteraction(ctx context.Context, summaryID int64, interactionType string, occurredAt time.Time) error
}

type behaviorRepository struct {
	db *gorm.DB
}

// NewBehaviorRepository 创建行为汇总仓储
func NewBehaviorRepository(db *gorm.DB) BehaviorRepository {
	return &behaviorRepository{db: db}
}

func (r *behaviorRepository) Get(ctx context.Context, visitor model.VisitorIdentity, productID int64) (*model.UserBehaviorSummary, error) {
	var summary model.UserBehaviorSummary
	err := r.db.WithContext(ctx).
		Scopes(visitorScope(visitor)).
		Where("product_id = ?", productID).
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *behaviorRepository) GetOrCreate(ctx context.Context, visitor model.VisitorIdentity, productID int64) (*model.UserBehaviorSummary, error) {
	summary, err := r.Get(ctx, visitor, productID)
	if err != nil {
		return nil, err
	}
	if summary != nil {
		return summary, nil
	}

	summary = &model.UserBehaviorSummary{ProductID: productID}
	if visitor.IsAccount() {
		uid := visitor.UserID()
		summary.UserID = &uid
	} else {
		key := visitor.SessionKey()
		summary.SessionKey = &key
	}

	if createErr := r.db.WithContext(ctx).Create(summary).Error; createErr != nil {
		// 首次并发交互撞唯一索引，回查
		existing, refetchErr := r.Get(ctx, visitor, productID)
		if refetchErr == nil && existing != nil {
			return existing, nil
		}
		return nil, createErr
	}
	return summary, nil
}

func (r *behaviorRepository) ApplyInteraction(ctx context.Context, summaryID int64, interactionType string, occurredAt time.Time) error {
	var fields map[string]interface{}

	switch interactionType {
	case model.InteractionView:
		fields = map[string]interface{}{
			"viewed":        true,
			"view_count":    gorm.Expr("view_count + 1"),
			"first_view_at": gorm.Expr("COALESCE(first_view_at, ?)", occurredAt),
			"last_view_at":  occurredAt,
		}
	case model.InteractionClick:
		fields = map[string]interface{}{
			"clicked": true,
		}
	case model.InteractionAddToCart:
		// 再次加车时清除移除标记，标记反映当前购物车意向
		fields = map[string]interface{}{
			"added_to_cart":     true,
			"cart_add_count":    gorm.Expr("cart_add_count + 1"),
			"added_to_cart_at":  occurredAt,
			"removed_from_cart": false,
		}
	case model.InteractionRemoveFromCart:
		fields = map[string]interface{}{
			"removed_from_cart":    true,
			"cart_remove_count":    gorm.Expr("cart_remove_count + 1"),
			"removed_from_cart_at": occurredAt,
		}
	case model.InteractionPurchase:
		fields = map[string]interface{}{
			"purchased":      true,
			"purchase_count": gorm.Expr("purchase_count + 1"),
			"purchased_at":   occurredAt,
		}
	default:
		// wishlist 等类型只记事件，不影响汇总
		return nil
	}

	return r.db.WithContext(ctx).Model(&model.UserBehaviorSummary{}).
		Where("id = ?", summaryID).
		Updates(fields).Error
}
