package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/middleware"
	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/service"
)

type ProductController struct {
	productService  *service.ProductService
	trackingService *service.TrackingService
}

func NewProductController(productService *service.ProductService, trackingService *service.TrackingService) *ProductController {
	return &ProductController{
		productService:  productService,
		trackingService: trackingService,
	}
}

// ==================== 店面侧 ====================

// ListProducts 商品列表
// @Summary 商品列表（仅上架商品）
// @Tags Product
// @Param category_id query int false "分类ID"
// @Param keyword query string false "关键词搜索"
// @Param sort_by query string false "排序: price_asc, price_desc, newest"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ListProductsResponse
// @Router /api/products [get]
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.productService.List(c.Request.Context(), &req, true)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// GetProduct 商品详情
// @Summary 商品详情
// @Tags Product
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductVO
// @Router /api/products/{id} [get]
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return
	}

	product, err := ctrl.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// GetProductBySlug 按 slug 获取商品详情
// @Summary 按 slug 获取商品详情
// @Tags Product
// @Param slug path string true "商品 slug"
// @Success 200 {object} dto.ProductVO
// @Router /api/products/slug/{slug} [get]
func (ctrl *ProductController) GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 slug"})
		return
	}

	product, err := ctrl.productService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, err)
		return
	}

	// 详情页打开即记一次浏览，埋点失败不影响返回
	_ = ctrl.trackingService.TrackSimple(c.Request.Context(), middleware.ResolveVisitor(c),
		product.ID, model.InteractionView, nil, requestContext(c))

	respondOK(c, product)
}

// ListCategories 分类列表
// @Summary 分类列表
// @Tags Product
// @Success 200 {array} dto.CategoryVO
// @Router /api/categories [get]
func (ctrl *ProductController) ListCategories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, categories)
}

// ==================== 管理端 ====================

// AdminListProducts 管理端商品列表（含下架商品）
// @Summary 管理端商品列表
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} dto.ListProductsResponse
// @Router /api/admin/products [get]
func (ctrl *ProductController) AdminListProducts(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.productService.List(c.Request.Context(), &req, false)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// CreateProduct 创建商品
// @Summary 创建商品
// @Tags Admin
// @Security BearerAuth
// @Param request body dto.CreateProductRequest true "商品信息"
// @Success 200 {object} dto.ProductVO
// @Router /api/admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// UpdateProduct 更新商品
// @Summary 更新商品
// @Tags Admin
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param request body dto.UpdateProductRequest true "更新字段"
// @Success 200 {object} dto.ProductVO
// @Router /api/admin/products/{id} [put]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// DeleteProduct 删除商品
// @Summary 删除商品（软删除）
// @Tags Admin
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Router /api/admin/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// CreateCategory 创建分类
// @Summary 创建分类
// @Tags Admin
// @Security BearerAuth
// @Param request body dto.CreateCategoryRequest true "分类信息"
// @Success 200 {object} dto.CategoryVO
// @Router /api/admin/categories [post]
func (ctrl *ProductController) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	category, err := ctrl.productService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, category)
}
