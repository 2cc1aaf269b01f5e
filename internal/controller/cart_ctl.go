package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/middleware"
	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/service"
)

type CartController struct {
	cartService     *service.CartService
	trackingService *service.TrackingService
}

func NewCartController(cartService *service.CartService, trackingService *service.TrackingService) *CartController {
	return &CartController{
		cartService:     cartService,
		trackingService: trackingService,
	}
}

// requestContext 提取请求上下文供埋点使用
func requestContext(c *gin.Context) service.RequestContext {
	return service.RequestContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	}
}

// ==================== 购物车接口 ====================

// GetCart 获取当前购物车
// @Summary 获取当前访客的购物车
// @Tags Cart
// @Success 200 {object} dto.CartResponse
// @Router /api/cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, err := ctrl.cartService.GetCart(c.Request.Context(), middleware.ResolveVisitor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, cart)
}

// AddItem 加入购物车
// @Summary 加入购物车，同商品重复加入数量累加
// @Tags Cart
// @Param request body dto.AddToCartRequest true "商品与数量"
// @Success 200 {object} dto.CartResponse
// @Router /api/cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req dto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	visitor := middleware.ResolveVisitor(c)
	cart, err := ctrl.cartService.AddItem(c.Request.Context(), visitor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	// 埋点失败不影响购物车操作结果
	_ = ctrl.trackingService.TrackSimple(c.Request.Context(), visitor, req.ProductID,
		model.InteractionAddToCart, map[string]interface{}{"quantity": req.Quantity}, requestContext(c))

	respondOK(c, cart)
}

// UpdateItem 修改购物车项数量
// @Summary 修改购物车项数量，0 表示移除
// @Tags Cart
// @Param id path int true "购物车项ID"
// @Param request body dto.UpdateCartItemRequest true "数量"
// @Success 200 {object} dto.CartResponse
// @Router /api/cart/items/{id} [put]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的购物车项ID"})
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	cart, err := ctrl.cartService.UpdateItem(c.Request.Context(), middleware.ResolveVisitor(c), itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, cart)
}

// RemoveItem 移除购物车项
// @Summary 移除购物车项
// @Tags Cart
// @Param id path int true "购物车项ID"
// @Success 200 {object} dto.CartResponse
// @Router /api/cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的购物车项ID"})
		return
	}

	visitor := middleware.ResolveVisitor(c)
	removed, cart, err := ctrl.cartService.RemoveItem(c.Request.Context(), visitor, itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	_ = ctrl.trackingService.TrackSimple(c.Request.Context(), visitor, removed.ProductID,
		model.InteractionRemoveFromCart, map[string]interface{}{"quantity": removed.Quantity}, requestContext(c))

	respondOK(c, cart)
}

// ClearCart 清空购物车
// @Summary 清空购物车
// @Tags Cart
// @Router /api/cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	visitor := middleware.ResolveVisitor(c)
	removed, err := ctrl.cartService.ClearCart(c.Request.Context(), visitor)
	if err != nil {
		respondError(c, err)
		return
	}

	// 每个被清掉的条目都单独留痕，分析侧不把整车清空并成一条
	for i := range removed {
		item := &removed[i]
		_ = ctrl.trackingService.TrackSimple(c.Request.Context(), visitor, item.ProductID,
			model.InteractionRemoveFromCart,
			map[string]interface{}{"quantity": item.Quantity, "cart_cleared": true}, requestContext(c))
	}

	respondOK(c, nil)
}
