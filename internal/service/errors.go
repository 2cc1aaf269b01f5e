package service

import (
	"errors"
	"fmt"
)

// ==================== 错误定义 ====================

var (
	// 用户
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrInvalidToken       = errors.New("Token 无效")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailExists        = errors.New("邮箱已注册")
	ErrInvalidOldPassword = errors.New("旧密码错误")

	// 商品
	ErrProductNotFound    = errors.New("商品不存在")
	ErrProductUnavailable = errors.New("商品已下架")
	ErrCategoryNotFound   = errors.New("分类不存在")
	ErrSlugExists         = errors.New("slug 已存在")

	// 购物车
	ErrCartNotFound     = errors.New("购物车不存在")
	ErrCartItemNotFound = errors.New("购物车项不存在")
	ErrCartEmpty        = errors.New("购物车为空")
	ErrInvalidQuantity  = errors.New("数量不合法")

	// 订单
	ErrOrderNotFound        = errors.New("订单不存在")
	ErrPaymentNotConfirmed  = errors.New("支付未确认")
	ErrInvalidOrderStatus   = errors.New("订单状态不合法")
	ErrInvalidPaymentStatus = errors.New("支付状态不合法")

	// 交互
	ErrInvalidInteractionType = errors.New("交互类型不合法")

	// 导出
	ErrInvalidExportScope = errors.New("导出范围不合法")
)

// InsufficientStockError 库存不足
// 携带商品与可用库存，便于前端提示具体哪件商品超卖
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("商品 %s 库存不足：请求 %d，剩余 %d", e.ProductName, e.Requested, e.Available)
}

// IsInsufficientStock 判断是否为库存不足错误
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
