package model

import (
	"time"
)

// ==================== Cart 购物车 ====================

// Cart 购物车，每个访客身份（用户或匿名会话）至多一辆
// user_id / session_key 二选一，由数据库唯一索引保证同一身份不会出现两辆车
type Cart struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"`
	UserID     *int64  `gorm:"uniqueIndex"`
	SessionKey *string `gorm:"size:40;uniqueIndex"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Items []CartItem `gorm:"foreignKey:CartID"`
}

func (*Cart) TableName() string {
	return "carts"
}

// TotalItems 商品总数量
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// SubtotalAmount 小计（分），按当前实际售价计算
func (c *Cart) SubtotalAmount() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.TotalAmount()
	}
	return total
}

// TotalAmount 总计（分），运费、税费的扩展点
func (c *Cart) TotalAmount() int64 {
	return c.SubtotalAmount()
}

// ==================== CartItem 购物车项 ====================

// CartItem 购物车项，(cart, product) 唯一
type CartItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CartID    int64 `gorm:"not null;uniqueIndex:idx_cart_product"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_cart_product"`
	Quantity  int   `gorm:"not null;default:1"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Product *Product `gorm:"foreignKey:ProductID"`
}

func (*CartItem) TableName() string {
	return "cart_items"
}

// UnitAmount 单价（分），读取时刻的实际售价
func (i *CartItem) UnitAmount() int64 {
	if i.Product == nil {
		return 0
	}
	return i.Product.FinalPriceAmount()
}

// TotalAmount 行总价（分）
func (i *CartItem) TotalAmount() int64 {
	return i.UnitAmount() * int64(i.Quantity)
}
