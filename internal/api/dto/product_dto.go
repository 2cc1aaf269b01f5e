package dto

import "time"

// ==================== 商品列表查询 ====================

// ListProductsRequest 商品列表请求
type ListProductsRequest struct {
	CategoryID int64   `form:"category_id"`
	Keyword    string  `form:"keyword"`
	MinPrice   float64 `form:"min_price"`
	MaxPrice   float64 `form:"max_price"`
	Featured   *bool   `form:"featured"`
	InStock    *bool   `form:"in_stock"`
	SortBy     string  `form:"sort_by"` // price_asc, price_desc, newest
	Page       int     `form:"page,default=1"`
	PageSize   int     `form:"page_size,default=20"`
}

// ListProductsResponse 商品列表响应
type ListProductsResponse struct {
	Total int64       `json:"total"`
	List  []ProductVO `json:"list"`
}

// ProductVO 商品视图对象
type ProductVO struct {
	ID                 int64                  `json:"id"`
	Name               string                 `json:"name"`
	Slug               string                 `json:"slug"`
	Description        string                 `json:"description,omitempty"`
	SKU                string                 `json:"sku,omitempty"`
	CategoryID         int64                  `json:"category_id"`
	CategoryName       string                 `json:"category_name,omitempty"`
	Price              float64                `json:"price"`
	DiscountPrice      float64                `json:"discount_price,omitempty"`
	FinalPrice         float64                `json:"final_price"`
	DiscountPercentage int                    `json:"discount_percentage"`
	Stock              int                    `json:"stock"`
	InStock            bool                   `json:"in_stock"`
	ImageURL           string                 `json:"image_url,omitempty"`
	Specifications     map[string]interface{} `json:"specifications,omitempty"`
	IsActive           bool                   `json:"is_active"`
	IsFeatured         bool                   `json:"is_featured"`
	CreatedAt          time.Time              `json:"created_at"`
}

// ==================== 商品管理 ====================

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Slug           string                 `json:"slug" binding:"required"`
	Description    string                 `json:"description"`
	SKU            string                 `json:"sku"`
	CategoryID     int64                  `json:"category_id" binding:"required"`
	Price          float64                `json:"price" binding:"required,gt=0"`
	DiscountPrice  float64                `json:"discount_price"`
	Stock          int                    `json:"stock" binding:"gte=0"`
	ImageURL       string                 `json:"image_url"`
	Specifications map[string]interface{} `json:"specifications"`
	IsActive       *bool                  `json:"is_active"`
	IsFeatured     bool                   `json:"is_featured"`
}

// UpdateProductRequest 更新商品请求
type UpdateProductRequest struct {
	Name           *string                `json:"name"`
	Description    *string                `json:"description"`
	CategoryID     *int64                 `json:"category_id"`
	Price          *float64               `json:"price"`
	DiscountPrice  *float64               `json:"discount_price"`
	Stock          *int                   `json:"stock"`
	ImageURL       *string                `json:"image_url"`
	Specifications map[string]interface{} `json:"specifications"`
	IsActive       *bool                  `json:"is_active"`
	IsFeatured     *bool                  `json:"is_featured"`
}

// ==================== 分类 ====================

// CategoryVO 分类视图对象
type CategoryVO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}
