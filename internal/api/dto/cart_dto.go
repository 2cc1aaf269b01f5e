package dto

import "time"

// ==================== 购物车操作 ====================

// AddToCartRequest 加入购物车请求
type AddToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest 更新购物车项请求
// 数量减到 0 等价于移除该项
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// ==================== 购物车视图 ====================

// CartResponse 购物车响应
type CartResponse struct {
	ID         int64        `json:"id"`
	TotalItems int          `json:"total_items"`
	Subtotal   float64      `json:"subtotal"`
	Total      float64      `json:"total"`
	Items      []CartItemVO `json:"items"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// CartItemVO 购物车项视图对象
type CartItemVO struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	ImageURL    string  `json:"image_url,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
	Stock       int     `json:"stock"`
	InStock     bool    `json:"in_stock"`
}

// MergeCartResponse 购物车合并结果
type MergeCartResponse struct {
	MergedItems int           `json:"merged_items"` // 并入的会话购物车项数
	Cart        *CartResponse `json:"cart"`
}
