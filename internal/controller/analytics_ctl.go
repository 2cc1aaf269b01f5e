package controller

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/middleware"
	"storefront_v1_202509/internal/service"
)

type AnalyticsController struct {
	trackingService  *service.TrackingService
	analyticsService *service.AnalyticsService
}

func NewAnalyticsController(trackingService *service.TrackingService, analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		trackingService:  trackingService,
		analyticsService: analyticsService,
	}
}

// ==================== 交互上报 ====================

// Track 上报交互事件
// @Summary 上报交互事件（浏览、点击、加车、收藏等）
// @Tags Analytics
// @Param request body dto.TrackInteractionRequest true "事件"
// @Router /api/interactions [post]
func (ctrl *AnalyticsController) Track(c *gin.Context) {
	var req dto.TrackInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	err := ctrl.trackingService.Track(c.Request.Context(), middleware.ResolveVisitor(c), &req, requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// GetBehavior 查询本人对某商品的行为汇总
// @Summary 当前访客对某商品的行为汇总
// @Tags Analytics
// @Param product_id path int true "商品ID"
// @Success 200 {object} dto.BehaviorSummaryVO
// @Router /api/interactions/behavior/{product_id} [get]
func (ctrl *AnalyticsController) GetBehavior(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return
	}

	summary, err := ctrl.trackingService.GetBehavior(c.Request.Context(), middleware.ResolveVisitor(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

// ==================== 管理端分析 ====================

// Overview 交互总览
// @Summary 各类型计数、去重访客数、营收
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} dto.OverviewResponse
// @Router /api/admin/analytics/overview [get]
func (ctrl *AnalyticsController) Overview(c *gin.Context) {
	var req dto.AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.analyticsService.Overview(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// TopProducts Top-N 商品
// @Summary 某类交互的 Top-N 商品
// @Tags Admin
// @Security BearerAuth
// @Success 200 {array} dto.TopProductVO
// @Router /api/admin/analytics/top-products [get]
func (ctrl *AnalyticsController) TopProducts(c *gin.Context) {
	var req dto.AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	list, err := ctrl.analyticsService.TopProducts(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, list)
}

// TimeSeries 时间序列
// @Summary 某类交互的按天时间序列
// @Tags Admin
// @Security BearerAuth
// @Success 200 {array} dto.TimeSeriesPoint
// @Router /api/admin/analytics/time-series [get]
func (ctrl *AnalyticsController) TimeSeries(c *gin.Context) {
	var req dto.AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	points, err := ctrl.analyticsService.TimeSeries(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, points)
}

// Funnel 转化漏斗
// @Summary 浏览 → 加车 → 购买转化漏斗
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} dto.FunnelResponse
// @Router /api/admin/analytics/funnel [get]
func (ctrl *AnalyticsController) Funnel(c *gin.Context) {
	var req dto.AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.analyticsService.Funnel(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// BehaviorLists 行为流失榜
// @Summary 看了未买、加车又移除的商品榜
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} dto.BehaviorListsResponse
// @Router /api/admin/analytics/behavior-lists [get]
func (ctrl *AnalyticsController) BehaviorLists(c *gin.Context) {
	var req dto.AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.analyticsService.BehaviorLists(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// CategoryAnalytics 分类分析
// @Summary 分类维度交互计数
// @Tags Admin
// @Security BearerAuth
// @Success 200 {array} dto.CategoryCountVO
// @Router /api/admin/analytics/categories [get]
func (ctrl *AnalyticsController) CategoryAnalytics(c *gin.Context) {
	var req dto.AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	list, err := ctrl.analyticsService.CategoryAnalytics(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, list)
}

// ListInteractions 事件明细
// @Summary 交互事件明细列表
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} dto.ListInteractionsResponse
// @Router /api/admin/analytics/interactions [get]
func (ctrl *AnalyticsController) ListInteractions(c *gin.Context) {
	var req dto.AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	resp, err := ctrl.analyticsService.ListInteractions(c.Request.Context(), &req, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// ExportCSV 导出 CSV
// @Summary 导出交互事件明细为 CSV
// @Tags Admin
// @Security BearerAuth
// @Produce text/csv
// @Router /api/admin/analytics/export [get]
func (ctrl *AnalyticsController) ExportCSV(c *gin.Context) {
	var req dto.AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	scope := req.Scope
	switch scope {
	case "":
		scope = "interactions"
	case "interactions", "products", "categories":
	default:
		respondError(c, service.ErrInvalidExportScope)
		return
	}
	filename := scope + "_" + time.Now().Format("20060102_150405") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := ctrl.analyticsService.ExportCSV(c.Request.Context(), c.Writer, &req); err != nil {
		if !c.Writer.Written() {
			respondError(c, err)
			return
		}
		// 正文已开始输出，只能截断
		c.Abort()
	}
}

// ListDailyStats 商品日统计
// @Summary 商品日统计列表
// @Tags Admin
// @Security BearerAuth
// @Success 200 {array} dto.DailyStatsVO
// @Router /api/admin/analytics/daily-stats [get]
func (ctrl *AnalyticsController) ListDailyStats(c *gin.Context) {
	var req dto.AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	list, err := ctrl.analyticsService.ListDailyStats(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, list)
}
