package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 订单状态常量 ====================

// OrderStatus 订单状态
const (
	OrderStatusPending        = "pending"          // 待确认
	OrderStatusConfirmed      = "confirmed"        // 已确认
	OrderStatusProcessing     = "processing"       // 处理中
	OrderStatusShipped        = "shipped"          // 已发货
	OrderStatusOutForDelivery = "out_for_delivery" // 派送中
	OrderStatusDelivered      = "delivered"        // 已签收
	OrderStatusCancelled      = "cancelled"        // 已取消
	OrderStatusReturned       = "returned"         // 已退货
)

// PaymentStatus 支付状态
const (
	PaymentStatusPending  = "pending"  // 待支付
	PaymentStatusPaid     = "paid"     // 已支付
	PaymentStatusFailed   = "failed"   // 支付失败
	PaymentStatusRefunded = "refunded" // 已退款
)

// PaymentMethod 支付方式
const (
	PaymentMethodStripe = "stripe" // 在线支付
	PaymentMethodCOD    = "cod"    // 货到付款
)

// ValidOrderStatus 校验订单状态枚举
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// ValidPaymentStatus 校验支付状态枚举
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// ==================== Order 订单主表 ====================

// Order 订单，创建后行项目不可变，仅状态类字段可由管理员修改
type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	OrderNumber string `gorm:"size:32;uniqueIndex;not null"` // 对外可见的订单号

	// 归属（下单时的访客身份，仅作归因，不授予修改权）
	UserID     *int64  `gorm:"index"`
	SessionKey *string `gorm:"size:40;index"`

	// 收件人信息
	Email     string `gorm:"size:255;not null"`
	FirstName string `gorm:"size:100;not null"`
	LastName  string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:20"`

	// 收货地址
	ShippingAddress string `gorm:"type:text;not null"`
	ShippingCity    string `gorm:"size:100;not null"`
	ShippingState   string `gorm:"size:100;not null"`
	ShippingZip     string `gorm:"size:20;not null"`
	ShippingCountry string `gorm:"size:100;default:India"`

	// 金额（分为单位存储，下单时刻快照）
	SubtotalAmount int64
	ShippingAmount int64
	TaxAmount      int64
	TotalAmount    int64

	// 状态
	Status        string `gorm:"size:32;index;default:pending"`
	PaymentStatus string `gorm:"size:32;index;default:pending"`
	PaymentMethod string `gorm:"size:32;default:stripe"`

	// 支付网关引用
	StripePaymentIntentID string `gorm:"size:128"`

	// 物流
	TrackingNumber    string `gorm:"size:100"`
	EstimatedDelivery *time.Time

	// 备注
	Notes      string `gorm:"type:text"`
	AdminNotes string `gorm:"type:text"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// GetSubtotal 获取小计（元）
func (o *Order) GetSubtotal() float64 {
	return float64(o.SubtotalAmount) / 100
}

// GetTotal 获取总金额（元）
func (o *Order) GetTotal() float64 {
	return float64(o.TotalAmount) / 100
}

// CustomerName 获取客户姓名
func (o *Order) CustomerName() string {
	return o.FirstName + " " + o.LastName
}

// IsTerminal 是否处于终态
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered ||
		o.Status == OrderStatusCancelled ||
		o.Status == OrderStatusReturned
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项，下单时刻的商品快照，创建后不随商品目录变化
type OrderItem struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	OrderID int64 `gorm:"index;not null"`

	// 商品引用（仅用于统计归因）
	ProductID int64 `gorm:"index"`

	// 快照字段
	ProductName string `gorm:"size:255;not null"`
	ProductSKU  string `gorm:"size:50;not null"`
	UnitAmount  int64  `gorm:"not null"` // 下单时实际售价（分）
	Quantity    int    `gorm:"not null"`
	TotalAmount int64  `gorm:"not null"`

	// 审计字段
	CreatedAt time.Time
}

func (*OrderItem) TableName() string {
	return "order_items"
}

// GetUnitPrice 获取单价（元）
func (i *OrderItem) GetUnitPrice() float64 {
	return float64(i.UnitAmount) / 100
}

// GetTotalPrice 获取行总价（元）
func (i *OrderItem) GetTotalPrice() float64 {
	return float64(i.TotalAmount) / 100
}
