package dto

import "time"

// ==================== 下单 ====================

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`

	ShippingAddress string `json:"shipping_address" binding:"required"`
	ShippingCity    string `json:"shipping_city" binding:"required"`
	ShippingState   string `json:"shipping_state" binding:"required"`
	ShippingZip     string `json:"shipping_zip" binding:"required"`
	ShippingCountry string `json:"shipping_country"`

	PaymentMethod string `json:"payment_method" binding:"required,oneof=stripe cod"`
	// 在线支付时前端传入的支付网关引用
	PaymentIntentID string `json:"payment_intent_id"`

	Notes string `json:"notes"`
}

// ==================== 支付 ====================

// CreatePaymentIntentRequest 创建支付意向请求
type CreatePaymentIntentRequest struct {
	// 不传则按当前购物车总额创建
	Amount float64 `json:"amount"`
}

// CreatePaymentIntentResponse 创建支付意向响应
type CreatePaymentIntentResponse struct {
	PaymentIntentID string  `json:"payment_intent_id"`
	ClientSecret    string  `json:"client_secret"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}

// ==================== 订单视图 ====================

// OrderResponse 订单视图对象
type OrderResponse struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`

	Email        string `json:"email"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone,omitempty"`

	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingState   string `json:"shipping_state"`
	ShippingZip     string `json:"shipping_zip"`
	ShippingCountry string `json:"shipping_country"`

	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`

	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`

	TrackingNumber    string     `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	Notes             string     `json:"notes,omitempty"`

	Items     []OrderItemVO `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
}

// OrderItemVO 订单项视图对象
type OrderItemVO struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	ProductSKU  string  `json:"product_sku,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}

// ListOrdersRequest 订单列表请求（管理端）
type ListOrdersRequest struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	Email         string `form:"email"`
	StartDate     string `form:"start_date"` // 2024-01-01
	EndDate       string `form:"end_date"`
	Page          int    `form:"page,default=1"`
	PageSize      int    `form:"page_size,default=20"`
}

// ListOrdersResponse 订单列表响应
type ListOrdersResponse struct {
	Total int64           `json:"total"`
	List  []OrderResponse `json:"list"`
}

// ==================== 管理端更新 ====================

// UpdateOrderStatusRequest 管理端更新订单请求
// 状态字段均可选，只更新传入的字段
type UpdateOrderStatusRequest struct {
	Status            *string    `json:"status"`
	PaymentStatus     *string    `json:"payment_status"`
	TrackingNumber    *string    `json:"tracking_number"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	AdminNotes        *string    `json:"admin_notes"`
}

// ==================== 订单统计 ====================

// OrderStatsResponse 订单统计响应（管理端）
type OrderStatsResponse struct {
	TotalOrders    int64            `json:"total_orders"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByPayment      map[string]int64 `json:"by_payment"`
	PaidRevenue    float64          `json:"paid_revenue"`
	PendingOrders  int64            `json:"pending_orders"`
	RecentRevenue  float64          `json:"recent_revenue"` // 最近 30 天已支付金额
	RecentOrders   []OrderResponse  `json:"recent_orders"`  // 最近 5 单
}
