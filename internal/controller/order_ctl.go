package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/middleware"
	"storefront_v1_202509/internal/service"
)

type OrderController struct {
	orderService *service.OrderService
}

func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ==================== 下单与支付 ====================

// CreateOrder 从购物车下单
// @Summary 从购物车创建订单
// @Tags Order
// @Param request body dto.CreateOrderRequest true "收件与支付信息"
// @Success 200 {object} dto.OrderResponse
// @Router /api/orders [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), middleware.ResolveVisitor(c), &req, requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// CreatePaymentIntent 创建支付意向
// @Summary 按购物车总额创建 Stripe 支付意向
// @Tags Order
// @Param request body dto.CreatePaymentIntentRequest false "金额（可选）"
// @Success 200 {object} dto.CreatePaymentIntentResponse
// @Router /api/orders/payment-intent [post]
func (ctrl *OrderController) CreatePaymentIntent(c *gin.Context) {
	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.orderService.CreatePaymentIntent(c.Request.Context(), middleware.ResolveVisitor(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// ==================== 查询 ====================

// ListMyOrders 我的订单列表
// @Summary 当前访客的订单列表
// @Tags Order
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ListOrdersResponse
// @Router /api/orders [get]
func (ctrl *OrderController) ListMyOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	resp, err := ctrl.orderService.ListMyOrders(c.Request.Context(), middleware.ResolveVisitor(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// GetOrder 订单详情
// @Summary 当前访客的订单详情
// @Tags Order
// @Param id path int true "订单ID"
// @Success 200 {object} dto.OrderResponse
// @Router /api/orders/{id} [get]
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的订单ID"})
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), middleware.ResolveVisitor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// TrackOrder 按订单号公开查询
// @Summary 按订单号查询订单（物流追踪，无需登录）
// @Tags Order
// @Param order_number path string true "订单号"
// @Success 200 {object} dto.OrderResponse
// @Router /api/orders/track/{order_number} [get]
func (ctrl *OrderController) TrackOrder(c *gin.Context) {
	orderNumber := c.Param("order_number")
	if orderNumber == "" {
		c.JSON(400, gin.H{"code": 400, "message": "无效的订单号"})
		return
	}

	order, err := ctrl.orderService.TrackByNumber(c.Request.Context(), orderNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// ==================== 管理端 ====================

// AdminListOrders 管理端订单列表
// @Summary 管理端订单列表
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} dto.ListOrdersResponse
// @Router /api/admin/orders [get]
func (ctrl *OrderController) AdminListOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.orderService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// AdminGetOrder 管理端订单详情
// @Summary 管理端订单详情
// @Tags Admin
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} dto.OrderResponse
// @Router /api/admin/orders/{id} [get]
func (ctrl *OrderController) AdminGetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的订单ID"})
		return
	}

	order, err := ctrl.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// AdminUpdateOrder 管理端更新订单状态
// @Summary 管理端更新订单状态、物流与备注
// @Tags Admin
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param request body dto.UpdateOrderStatusRequest true "更新字段"
// @Success 200 {object} dto.OrderResponse
// @Router /api/admin/orders/{id} [patch]
func (ctrl *OrderController) AdminUpdateOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的订单ID"})
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// AdminOrderStats 管理端订单统计
// @Summary 订单状态与营收统计
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} dto.OrderStatsResponse
// @Router /api/admin/orders/stats [get]
func (ctrl *OrderController) AdminOrderStats(c *gin.Context) {
	stats, err := ctrl.orderService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}
