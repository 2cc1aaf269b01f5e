package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront_v1_202509/internal/model"
)

// visitorScope 按访客身份过滤的查询范围
func visitorScope(v model.VisitorIdentity) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if v.IsAccount() {
			return db.Where("user_id = ?", v.UserID())
		}
		return db.Where("session_key = ?", v.SessionKey())
	}
}

// ==================== CartRepository 购物车仓储 ====================

// CartRepository 购物车仓储接口
type CartRepository interface {
	// GetOrCreate 获取访客购物车，不存在则创建
	// 同一身份的并发创建由唯一索引兜底：插入冲突时回查已有记录
	GetOrCreate(ctx context.Context, visitor model.VisitorIdentity) (*model.Cart, error)
	GetByVisitor(ctx context.Context, visitor model.VisitorIdentity) (*model.Cart, error)
	GetWithItems(ctx context.Context, cartID int64) (*model.Cart, error)
	Delete(ctx context.Context, cartID int64) error

	// 购物车项
	GetItem(ctx context.Context, cartID, productID int64) (*model.CartItem, error)
	GetItemByID(ctx context.Context, cartID, itemID int64) (*model.CartItem, error)
	CreateItem(ctx context.Context, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	DeleteAllItems(ctx context.Context, cartID int64) error
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetOrCreate(ctx context.Context, visitor model.VisitorIdentity) (*model.Cart, error) {
	cart, err := r.GetByVisitor(ctx, visitor)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &model.Cart{}
	if visitor.IsAccount() {
		uid := visitor.UserID()
		cart.UserID = &uid
	} else {
		key := visitor.SessionKey()
		cart.SessionKey = &key
	}

	if createErr := r.db.WithContext(ctx).Create(cart).Error; createErr != nil {
		// 两个并发请求同时创建时，后者撞唯一索引，回查已存在的车
		existing, refetchErr := r.GetByVisitor(ctx, visitor)
		if refetchErr == nil && existing != nil {
			return existing, nil
		}
		return nil, createErr
	}
	return cart, nil
}

func (r *cartRepository) GetByVisitor(ctx context.Context, visitor model.VisitorIdentity) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Scopes(visitorScope(visitor)).
		Preload("Items").
		Preload("Items.Product").
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetWithItems(ctx context.Context, cartID int64) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&cart, cartID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Delete(ctx context.Context, cartID int64) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&model.Cart{}, cartID).Error
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, productID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) GetItemByID(ctx context.Context, cartID, itemID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	return r.db.WithContext(ctx).Delete(&model.CartItem{}, itemID).Error
}

func (r *cartRepository) DeleteAllItems(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}
