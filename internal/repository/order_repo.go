package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront_v1_202509/internal/model"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单列表过滤条件
type OrderFilter struct {
	Status        string
	PaymentStatus string
	Email         string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}

// OrderStatusCount 按状态统计
type OrderStatusCount struct {
	Status string
	Count  int64
}

// ==================== OrderRepository 订单仓储 ====================

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	ListByVisitor(ctx context.Context, visitor model.VisitorIdentity, page, pageSize int) ([]model.Order, int64, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	ClaimSessionOrders(ctx context.Context, sessionKey string, userID int64) error

	CountByStatus(ctx context.Context) ([]OrderStatusCount, error)
	CountByPaymentStatus(ctx context.Context) ([]OrderStatusCount, error)
	PaidRevenue(ctx context.Context, start, end *time.Time) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByVisitor(ctx context.Context, visitor model.VisitorIdentity, page, pageSize int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(visitorScope(visitor))

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := db.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		db = db.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Email != "" {
		db = db.Where("email = ?", filter.Email)
	}
	if filter.StartDate != nil {
		db = db.Where("created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("created_at <= ?", filter.EndDate)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	err := db.Preload("Items").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ClaimSessionOrders 登录后把匿名会话的历史订单归到账号名下
func (r *orderRepository) ClaimSessionOrders(ctx context.Context, sessionKey string, userID int64) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("session_key = ? AND user_id IS NULL", sessionKey).
		Updates(map[string]interface{}{
			"user_id":     userID,
			"session_key": nil,
		}).Error
}

func (r *orderRepository) CountByStatus(ctx context.Context) ([]OrderStatusCount, error) {
	var rows []OrderStatusCount
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *orderRepository) CountByPaymentStatus(ctx context.Context) ([]OrderStatusCount, error) {
	var rows []OrderStatusCount
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("payment_status AS status, COUNT(*) AS count").
		Group("payment_status").
		Scan(&rows).Error
	return rows, err
}

// PaidRevenue 已支付订单的总金额（分）
func (r *orderRepository) PaidRevenue(ctx context.Context, start, end *time.Time) (int64, error) {
	var total *int64
	db := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("payment_status = ?", model.PaymentStatusPaid)
	if start != nil {
		db = db.Where("created_at >= ?", start)
	}
	if end != nil {
		db = db.Where("created_at <= ?", end)
	}
	err := db.Select("SUM(total_amount)").Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// ==================== CheckoutUnitOfWork 下单事务 ====================

// CheckoutUnitOfWork 下单流程的事务边界
// 库存扣减、订单落库、购物车清空、购买事件写入必须同生共死
type CheckoutUnitOfWork struct {
	db *gorm.DB

	Orders       OrderRepository
	Products     ProductRepository
	Carts        CartRepository
	Interactions InteractionRepository
	Behaviors    BehaviorRepository
}

// NewCheckoutUnitOfWork 创建下单事务单元
func NewCheckoutUnitOfWork(db *gorm.DB) *CheckoutUnitOfWork {
	return &CheckoutUnitOfWork{
		db:           db,
		Orders:       NewOrderRepository(db),
		Products:     NewProductRepository(db),
		Carts:        NewCartRepository(db),
		Interactions: NewInteractionRepository(db),
		Behaviors:    NewBehaviorRepository(db),
	}
}

// Transaction 在单个数据库事务内执行 fn，fn 中通过传入的 uow 访问各仓储
func (u *CheckoutUnitOfWork) Transaction(ctx context.Context, fn func(uow *CheckoutUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewCheckoutUnitOfWork(tx))
	})
}
