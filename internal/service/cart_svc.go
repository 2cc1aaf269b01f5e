package service

import (
	"context"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/repository"
)

// ==================== CartService 购物车服务 ====================

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// ==================== 查询 ====================

// GetCart 获取当前访客的购物车，不存在时返回空购物车视图
func (s *CartService) GetCart(ctx context.Context, visitor model.VisitorIdentity) (*dto.CartResponse, error) {
	cart, err := s.cartRepo.GetByVisitor(ctx, visitor)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		// 查询不隐式建车，避免爬虫刷出大量空行
		return &dto.CartResponse{Items: []dto.CartItemVO{}}, nil
	}
	return s.toCartResponse(cart), nil
}

// ==================== 写操作 ====================

// AddItem 加入购物车
// 同一商品重复加入时数量累加，累加后数量不得超过当前库存
func (s *CartService) AddItem(ctx context.Context, visitor model.VisitorIdentity, req *dto.AddToCartRequest) (*dto.CartResponse, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.GetActiveByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, visitor)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetItem(ctx, cart.ID, req.ProductID)
	if err != nil {
		return nil, err
	}

	requested := req.Quantity
	if item != nil {
		requested += item.Quantity
	}
	if requested > product.Stock {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   requested,
			Available:   product.Stock,
		}
	}

	if item != nil {
		if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, requested); err != nil {
			return nil, err
		}
	} else {
		item = &model.CartItem{
			CartID:    cart.ID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := s.cartRepo.CreateItem(ctx, item); err != nil {
			return nil, err
		}
	}

	return s.reload(ctx, cart.ID)
}

// UpdateItem 修改购物车项数量，目标数量至少为 1
// 移除走 RemoveItem，由它负责上报移除事件
func (s *CartService) UpdateItem(ctx context.Context, visitor model.VisitorIdentity, itemID int64, req *dto.UpdateCartItemRequest) (*dto.CartResponse, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.cartRepo.GetByVisitor(ctx, visitor)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	item, err := s.cartRepo.GetItemByID(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}

	product, err := s.productRepo.GetActiveByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if req.Quantity > product.Stock {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   req.Quantity,
			Available:   product.Stock,
		}
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, req.Quantity); err != nil {
		return nil, err
	}
	return s.reload(ctx, cart.ID)
}

// RemoveItem 移除购物车项，返回被移除的项（供交互上报商品与数量）
func (s *CartService) RemoveItem(ctx context.Context, visitor model.VisitorIdentity, itemID int64) (*model.CartItem, *dto.CartResponse, error) {
	cart, err := s.cartRepo.GetByVisitor(ctx, visitor)
	if err != nil {
		return nil, nil, err
	}
	if cart == nil {
		return nil, nil, ErrCartNotFound
	}

	item, err := s.cartRepo.GetItemByID(ctx, cart.ID, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, ErrCartItemNotFound
	}

	if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
		return nil, nil, err
	}

	resp, err := s.reload(ctx, cart.ID)
	return item, resp, err
}

// ClearCart 清空购物车，返回被清掉的各项
// 每一项在分析侧单独可见，调用方按项上报移除事件
func (s *CartService) ClearCart(ctx context.Context, visitor model.VisitorIdentity) ([]model.CartItem, error) {
	cart, err := s.cartRepo.GetByVisitor(ctx, visitor)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, nil
	}

	removed := make([]model.CartItem, len(cart.Items))
	copy(removed, cart.Items)

	if err := s.cartRepo.DeleteAllItems(ctx, cart.ID); err != nil {
		return nil, err
	}
	return removed, nil
}

// ==================== 登录合并 ====================

// MergeOnLogin 登录后把匿名会话购物车并入账号购物车
// 同一商品数量相加，合并完成后删除会话购物车；
// 合并不做库存校验，超出部分留到下单时再拦
func (s *CartService) MergeOnLogin(ctx context.Context, sessionKey string, userID int64) (*dto.MergeCartResponse, error) {
	sessionCart, err := s.cartRepo.GetByVisitor(ctx, model.AnonymousVisitor(sessionKey))
	if err != nil {
		return nil, err
	}
	if sessionCart == nil || len(sessionCart.Items) == 0 {
		// 无可合并内容，空的会话购物车也一并收掉
		if sessionCart != nil {
			if err := s.cartRepo.Delete(ctx, sessionCart.ID); err != nil {
				return nil, err
			}
		}
		userCart, err := s.cartRepo.GetByVisitor(ctx, model.AccountVisitor(userID))
		if err != nil {
			return nil, err
		}
		resp := &dto.MergeCartResponse{Cart: &dto.CartResponse{Items: []dto.CartItemVO{}}}
		if userCart != nil {
			resp.Cart = s.toCartResponse(userCart)
		}
		return resp, nil
	}

	userCart, err := s.cartRepo.GetOrCreate(ctx, model.AccountVisitor(userID))
	if err != nil {
		return nil, err
	}

	merged := 0
	for _, sessionItem := range sessionCart.Items {
		existing, err := s.cartRepo.GetItem(ctx, userCart.ID, sessionItem.ProductID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := s.cartRepo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+sessionItem.Quantity); err != nil {
				return nil, err
			}
		} else {
			newItem := &model.CartItem{
				CartID:    userCart.ID,
				ProductID: sessionItem.ProductID,
				Quantity:  sessionItem.Quantity,
			}
			if err := s.cartRepo.CreateItem(ctx, newItem); err != nil {
				return nil, err
			}
		}
		merged++
	}

	// 会话购物车生命周期到此结束
	if err := s.cartRepo.Delete(ctx, sessionCart.ID); err != nil {
		return nil, err
	}

	resp, err := s.reload(ctx, userCart.ID)
	if err != nil {
		return nil, err
	}
	return &dto.MergeCartResponse{MergedItems: merged, Cart: resp}, nil
}

// ==================== 转换 ====================

func (s *CartService) reload(ctx context.Context, cartID int64) (*dto.CartResponse, error) {
	cart, err := s.cartRepo.GetWithItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &dto.CartResponse{Items: []dto.CartItemVO{}}, nil
	}
	return s.toCartResponse(cart), nil
}

func (s *CartService) toCartResponse(cart *model.Cart) *dto.CartResponse {
	items := make([]dto.CartItemVO, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		vo := dto.CartItemVO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			vo.ProductName = item.Product.Name
			vo.ImageURL = item.Product.ImageURL
			vo.UnitPrice = item.Product.GetFinalPrice()
			vo.TotalPrice = float64(item.TotalAmount()) / 100
			vo.Stock = item.Product.Stock
			vo.InStock = item.Product.InStock()
		}
		items = append(items, vo)
	}

	return &dto.CartResponse{
		ID:         cart.ID,
		TotalItems: cart.TotalItems(),
		Subtotal:   float64(cart.SubtotalAmount()) / 100,
		Total:      float64(cart.TotalAmount()) / 100,
		Items:      items,
		UpdatedAt:  cart.UpdatedAt,
	}
}
