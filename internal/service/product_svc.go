package service

import (
	"context"

	"gorm.io/datatypes"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/repository"
)

// ==================== ProductService 商品服务 ====================

// ProductService 商品目录服务
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// ==================== 查询 ====================

// List 商品列表（店面侧只返回上架商品）
func (s *ProductService) List(ctx context.Context, req *dto.ListProductsRequest, storefront bool) (*dto.ListProductsResponse, error) {
	filter := repository.ProductFilter{
		CategoryID: req.CategoryID,
		Keyword:    req.Keyword,
		IsFeatured: req.Featured,
		InStock:    req.InStock,
		MinAmount:  int64(req.MinPrice * 100),
		MaxAmount:  int64(req.MaxPrice * 100),
		SortBy:     req.SortBy,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if storefront {
		active := true
		filter.IsActive = &active
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]dto.ProductVO, 0, len(products))
	for i := range products {
		list = append(list, *s.toProductVO(&products[i]))
	}

	return &dto.ListProductsResponse{Total: total, List: list}, nil
}

// GetByID 商品详情
func (s *ProductService) GetByID(ctx context.Context, id int64) (*dto.ProductVO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return s.toProductVO(product), nil
}

// GetBySlug 按 slug 获取商品详情
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*dto.ProductVO, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return s.toProductVO(product), nil
}

// ListCategories 分类列表
func (s *ProductService) ListCategories(ctx context.Context) ([]dto.CategoryVO, error) {
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]dto.CategoryVO, 0, len(categories))
	for _, c := range categories {
		list = append(list, dto.CategoryVO{
			ID:          c.ID,
			Name:        c.Name,
			Slug:        c.Slug,
			Description: c.Description,
			IsActive:    c.IsActive,
		})
	}
	return list, nil
}

// ==================== 管理端 ====================

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductVO, error) {
	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	if existing, err := s.productRepo.GetBySlug(ctx, req.Slug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrSlugExists
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	product := &model.Product{
		Name:           req.Name,
		Slug:           req.Slug,
		SKU:            req.SKU,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		PriceAmount:    int64(req.Price * 100),
		DiscountAmount: int64(req.DiscountPrice * 100),
		Stock:          req.Stock,
		ImageURL:       req.ImageURL,
		Specifications: datatypes.JSONMap(req.Specifications),
		IsActive:       active,
		IsFeatured:     req.IsFeatured,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.toProductVO(product), nil
}

// Update 更新商品，只更新传入的字段
func (s *ProductService) Update(ctx context.Context, id int64, req *dto.UpdateProductRequest) (*dto.ProductVO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
		fields["category_id"] = *req.CategoryID
	}
	if req.Price != nil {
		fields["price_amount"] = int64(*req.Price * 100)
	}
	if req.DiscountPrice != nil {
		fields["discount_amount"] = int64(*req.DiscountPrice * 100)
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.Specifications != nil {
		fields["specifications"] = datatypes.JSONMap(req.Specifications)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		fields["is_featured"] = *req.IsFeatured
	}

	if len(fields) > 0 {
		if err := s.productRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// Delete 删除商品（软删除）
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.productRepo.Delete(ctx, id)
}

// CreateCategory 创建分类
func (s *ProductService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryVO, error) {
	if existing, err := s.categoryRepo.GetBySlug(ctx, req.Slug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrSlugExists
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	category := &model.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    active,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return &dto.CategoryVO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		IsActive:    category.IsActive,
	}, nil
}

// toProductVO 转换为 DTO
func (s *ProductService) toProductVO(p *model.Product) *dto.ProductVO {
	vo := &dto.ProductVO{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		SKU:                p.SKU,
		CategoryID:         p.CategoryID,
		Price:              p.GetPrice(),
		FinalPrice:         p.GetFinalPrice(),
		DiscountPercentage: p.DiscountPercentage(),
		Stock:              p.Stock,
		InStock:            p.InStock(),
		ImageURL:           p.ImageURL,
		Specifications:     p.Specifications,
		IsActive:           p.IsActive,
		IsFeatured:         p.IsFeatured,
		CreatedAt:          p.CreatedAt,
	}
	if p.DiscountAmount > 0 {
		vo.DiscountPrice = float64(p.DiscountAmount) / 100
	}
	if p.Category != nil {
		vo.CategoryName = p.Category.Name
	}
	return vo
}
