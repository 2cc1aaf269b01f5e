package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/repository"
)

// ==================== OrderService 订单服务 ====================

// OrderService 订单服务
// 下单在单个数据库事务内完成：库存扣减、订单落库、购买事件、清空购物车
type OrderService struct {
	uow        *repository.CheckoutUnitOfWork
	orderRepo  repository.OrderRepository
	paymentSvc *PaymentService
}

// NewOrderService 创建订单服务
func NewOrderService(uow *repository.CheckoutUnitOfWork, orderRepo repository.OrderRepository, paymentSvc *PaymentService) *OrderService {
	return &OrderService{
		uow:        uow,
		orderRepo:  orderRepo,
		paymentSvc: paymentSvc,
	}
}

// ==================== 下单 ====================

// CreateOrder 从购物车创建订单
// 在线支付先回查网关确认扣款，再进事务；任一商品库存不足则整单回滚
func (s *OrderService) CreateOrder(ctx context.Context, visitor model.VisitorIdentity, req *dto.CreateOrderRequest, reqCtx RequestContext) (*dto.OrderResponse, error) {
	if !visitor.Valid() {
		return nil, ErrInvalidToken
	}

	// 支付确认在事务外完成，外部调用不占事务
	// 货到付款直接确认；在线支付带凭证则回查网关，无凭证下单后等待支付
	orderStatus := model.OrderStatusPending
	paymentStatus := model.PaymentStatusPending
	switch {
	case req.PaymentMethod == model.PaymentMethodCOD:
		orderStatus = model.OrderStatusConfirmed
	case req.PaymentMethod == model.PaymentMethodStripe && req.PaymentIntentID != "":
		paid, err := s.paymentSvc.VerifyIntent(ctx, req.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		if !paid {
			return nil, ErrPaymentNotConfirmed
		}
		orderStatus = model.OrderStatusConfirmed
		paymentStatus = model.PaymentStatusPaid
	}

	var created *model.Order

	err := s.uow.Transaction(ctx, func(uow *repository.CheckoutUnitOfWork) error {
		cart, err := uow.Carts.GetByVisitor(ctx, visitor)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		now := time.Now()
		order := &model.Order{
			OrderNumber:           generateOrderNumber(now),
			Email:                 req.Email,
			FirstName:             req.FirstName,
			LastName:              req.LastName,
			Phone:                 req.Phone,
			ShippingAddress:       req.ShippingAddress,
			ShippingCity:          req.ShippingCity,
			ShippingState:         req.ShippingState,
			ShippingZip:           req.ShippingZip,
			ShippingCountry:       req.ShippingCountry,
			Status:                orderStatus,
			PaymentStatus:         paymentStatus,
			PaymentMethod:         req.PaymentMethod,
			StripePaymentIntentID: req.PaymentIntentID,
			Notes:                 req.Notes,
		}
		if visitor.IsAccount() {
			uid := visitor.UserID()
			order.UserID = &uid
		} else {
			key := visitor.SessionKey()
			order.SessionKey = &key
		}

		var subtotal int64
		for i := range cart.Items {
			item := &cart.Items[i]

			// 逐件条件扣减，扣不动即库存不足，整单回滚
			product, err := uow.Products.GetActiveByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return ErrProductUnavailable
			}

			ok, err := uow.Products.DecrementStock(ctx, product.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.Stock,
				}
			}

			// 下单时刻快照
			unitAmount := product.FinalPriceAmount()
			lineTotal := unitAmount * int64(item.Quantity)
			subtotal += lineTotal
			order.Items = append(order.Items, model.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				ProductSKU:  product.SKU,
				UnitAmount:  unitAmount,
				Quantity:    item.Quantity,
				TotalAmount: lineTotal,
			})
		}

		order.SubtotalAmount = subtotal
		order.TotalAmount = subtotal + order.ShippingAmount + order.TaxAmount

		if err := uow.Orders.Create(ctx, order); err != nil {
			return err
		}

		// 购买事件与行为汇总随订单同事务写入
		for i := range order.Items {
			orderItem := &order.Items[i]
			interaction := &model.ProductInteraction{
				ProductID:       orderItem.ProductID,
				InteractionType: model.InteractionPurchase,
				Metadata: datatypes.JSONMap{
					"quantity":     orderItem.Quantity,
					"order_number": order.OrderNumber,
				},
				IPAddress: reqCtx.IPAddress,
				UserAgent: reqCtx.UserAgent,
				Referrer:  reqCtx.Referrer,
				CreatedAt: now,
			}
			interaction.UserID = order.UserID
			interaction.SessionKey = order.SessionKey
			if err := uow.Interactions.Create(ctx, interaction); err != nil {
				return err
			}

			summary, err := uow.Behaviors.GetOrCreate(ctx, visitor, orderItem.ProductID)
			if err != nil {
				return err
			}
			if err := uow.Behaviors.ApplyInteraction(ctx, summary.ID, model.InteractionPurchase, now); err != nil {
				return err
			}
		}

		// 下单即清空购物车
		if err := uow.Carts.DeleteAllItems(ctx, cart.ID); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toOrderResponse(created), nil
}

// generateOrderNumber 生成对外订单号：ORD-日期-随机段
func generateOrderNumber(t time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return "ORD-" + t.Format("20060102") + "-" + fragment
}

// ==================== 支付意向 ====================

// CreatePaymentIntent 按当前购物车总额创建支付意向
func (s *OrderService) CreatePaymentIntent(ctx context.Context, visitor model.VisitorIdentity, req *dto.CreatePaymentIntentRequest) (*dto.CreatePaymentIntentResponse, error) {
	amountCents := int64(req.Amount * 100)
	if amountCents <= 0 {
		cart, err := s.uow.Carts.GetByVisitor(ctx, visitor)
		if err != nil {
			return nil, err
		}
		if cart == nil || len(cart.Items) == 0 {
			return nil, ErrCartEmpty
		}
		amountCents = cart.TotalAmount()
	}
	return s.paymentSvc.CreateIntent(ctx, amountCents)
}

// ==================== 查询 ====================

// GetOrder 访客查看自己的订单
func (s *OrderService) GetOrder(ctx context.Context, visitor model.VisitorIdentity, id int64) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil || !orderBelongsTo(order, visitor) {
		return nil, ErrOrderNotFound
	}
	return s.toOrderResponse(order), nil
}

// ListMyOrders 访客订单列表
func (s *OrderService) ListMyOrders(ctx context.Context, visitor model.VisitorIdentity, page, pageSize int) (*dto.ListOrdersResponse, error) {
	orders, total, err := s.orderRepo.ListByVisitor(ctx, visitor, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &dto.ListOrdersResponse{Total: total, List: s.toOrderList(orders)}, nil
}

// TrackByNumber 按订单号公开查询（物流追踪页，无需登录）
func (s *OrderService) TrackByNumber(ctx context.Context, orderNumber string) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.toOrderResponse(order), nil
}

// ClaimSessionOrders 登录后把匿名期间的订单归到账号名下
func (s *OrderService) ClaimSessionOrders(ctx context.Context, sessionKey string, userID int64) error {
	return s.orderRepo.ClaimSessionOrders(ctx, sessionKey, userID)
}

// ==================== 管理端 ====================

// List 管理端订单列表
func (s *OrderService) List(ctx context.Context, req *dto.ListOrdersRequest) (*dto.ListOrdersResponse, error) {
	filter := repository.OrderFilter{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Email:         req.Email,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}
	if req.StartDate != "" {
		if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			filter.StartDate = &t
		}
	}
	if req.EndDate != "" {
		if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			filter.EndDate = &end
		}
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.ListOrdersResponse{Total: total, List: s.toOrderList(orders)}, nil
}

// GetByID 管理端订单详情
func (s *OrderService) GetByID(ctx context.Context, id int64) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.toOrderResponse(order), nil
}

// UpdateStatus 管理端更新订单状态
// 状态可任意改写（客服纠错场景），只校验枚举合法性
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, req *dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	fields := map[string]interface{}{}
	if req.Status != nil {
		if !model.ValidOrderStatus(*req.Status) {
			return nil, ErrInvalidOrderStatus
		}
		fields["status"] = *req.Status
	}
	if req.PaymentStatus != nil {
		if !model.ValidPaymentStatus(*req.PaymentStatus) {
			return nil, ErrInvalidPaymentStatus
		}
		fields["payment_status"] = *req.PaymentStatus
	}
	if req.TrackingNumber != nil {
		fields["tracking_number"] = *req.TrackingNumber
	}
	if req.EstimatedDelivery != nil {
		fields["estimated_delivery"] = *req.EstimatedDelivery
	}
	if req.AdminNotes != nil {
		fields["admin_notes"] = *req.AdminNotes
	}

	if len(fields) > 0 {
		if err := s.orderRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// Stats 管理端订单统计
func (s *OrderService) Stats(ctx context.Context) (*dto.OrderStatsResponse, error) {
	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPayment, err := s.orderRepo.CountByPaymentStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orderRepo.PaidRevenue(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -30)
	recent, err := s.orderRepo.PaidRevenue(ctx, &since, nil)
	if err != nil {
		return nil, err
	}

	recentOrders, _, err := s.orderRepo.List(ctx, repository.OrderFilter{Page: 1, PageSize: 5})
	if err != nil {
		return nil, err
	}

	resp := &dto.OrderStatsResponse{
		ByStatus:      map[string]int64{},
		ByPayment:     map[string]int64{},
		PaidRevenue:   float64(revenue) / 100,
		RecentRevenue: float64(recent) / 100,
		RecentOrders:  s.toOrderList(recentOrders),
	}
	for _, row := range byStatus {
		resp.ByStatus[row.Status] = row.Count
		resp.TotalOrders += row.Count
		if row.Status == model.OrderStatusPending {
			resp.PendingOrders = row.Count
		}
	}
	for _, row := range byPayment {
		resp.ByPayment[row.Status] = row.Count
	}
	return resp, nil
}

// ==================== 转换 ====================

func orderBelongsTo(order *model.Order, visitor model.VisitorIdentity) bool {
	if visitor.IsAccount() {
		return order.UserID != nil && *order.UserID == visitor.UserID()
	}
	return order.SessionKey != nil && *order.SessionKey == visitor.SessionKey()
}

func (s *OrderService) toOrderList(orders []model.Order) []dto.OrderResponse {
	list := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		list = append(list, *s.toOrderResponse(&orders[i]))
	}
	return list
}

func (s *OrderService) toOrderResponse(order *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemVO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemVO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			UnitPrice:   float64(item.UnitAmount) / 100,
			Quantity:    item.Quantity,
			TotalPrice:  float64(item.TotalAmount) / 100,
		})
	}

	return &dto.OrderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		Email:             order.Email,
		CustomerName:      order.CustomerName(),
		Phone:             order.Phone,
		ShippingAddress:   order.ShippingAddress,
		ShippingCity:      order.ShippingCity,
		ShippingState:     order.ShippingState,
		ShippingZip:       order.ShippingZip,
		ShippingCountry:   order.ShippingCountry,
		Subtotal:          order.GetSubtotal(),
		Shipping:          float64(order.ShippingAmount) / 100,
		Tax:               float64(order.TaxAmount) / 100,
		Total:             order.GetTotal(),
		Status:            order.Status,
		PaymentStatus:     order.PaymentStatus,
		PaymentMethod:     order.PaymentMethod,
		TrackingNumber:    order.TrackingNumber,
		EstimatedDelivery: order.EstimatedDelivery,
		Notes:             order.Notes,
		Items:             items,
		CreatedAt:         order.CreatedAt,
	}
}
