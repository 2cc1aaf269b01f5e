package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/model"
)

func codOrderRequest() *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		Email:           "buyer@example.com",
		FirstName:       "Asha",
		LastName:        "Patel",
		ShippingAddress: "12 MG Road",
		ShippingCity:    "Bengaluru",
		ShippingState:   "Karnataka",
		ShippingZip:     "560001",
		ShippingCountry: "India",
		PaymentMethod:   model.PaymentMethodCOD,
	}
}

// ==================== 下单主流程 ====================

func TestOrderService_CreateOrderCOD(t *testing.T) {
	db := setupTestDB(t)
	cartSvc := newCartService(db)
	orderSvc := newOrderService(db)
	ctx := context.Background()

	productA := seedProduct(t, db, "lamp", 2500, 10)
	productB := seedProduct(t, db, "desk", 150000, 4)
	visitor := model.AnonymousVisitor("sess-order")

	if _, err := cartSvc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: productA.ID, Quantity: 2}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}
	if _, err := cartSvc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: productB.ID, Quantity: 1}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}

	order, err := orderSvc.CreateOrder(ctx, visitor, codOrderRequest(), RequestContext{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	if !strings.HasPrefix(order.OrderNumber, "ORD-") {
		t.Errorf("订单号格式不符: %s", order.OrderNumber)
	}
	if order.Status != model.OrderStatusConfirmed {
		t.Errorf("货到付款应直接确认, 实际 %s", order.Status)
	}
	if order.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("货到付款应为待支付, 实际 %s", order.PaymentStatus)
	}
	if len(order.Items) != 2 {
		t.Fatalf("期望 2 个订单项, 实际 %d", len(order.Items))
	}
	// 2×25.00 + 1×1500.00
	if order.Subtotal != 1550.00 || order.Total != 1550.00 {
		t.Errorf("金额不符: subtotal=%v total=%v", order.Subtotal, order.Total)
	}

	// 库存已扣减
	var a, b model.Product
	db.First(&a, productA.ID)
	db.First(&b, productB.ID)
	if a.Stock != 8 || b.Stock != 3 {
		t.Errorf("库存扣减不符: a=%d b=%d", a.Stock, b.Stock)
	}

	// 购物车已清空
	cart, _ := cartSvc.GetCart(ctx, visitor)
	if len(cart.Items) != 0 {
		t.Errorf("期望购物车已清空, 实际 %d 项", len(cart.Items))
	}

	// 每个订单项一条购买事件，元数据携带数量与订单号
	var interactions []model.ProductInteraction
	db.Where("interaction_type = ?", model.InteractionPurchase).Find(&interactions)
	if len(interactions) != 2 {
		t.Fatalf("期望 2 条购买事件, 实际 %d", len(interactions))
	}
	for _, in := range interactions {
		if in.Metadata["order_number"] != order.OrderNumber {
			t.Errorf("购买事件订单号不符: %v", in.Metadata["order_number"])
		}
	}

	// 行为汇总标记购买
	var summary model.UserBehaviorSummary
	if err := db.Where("session_key = ? AND product_id = ?", "sess-order", productA.ID).First(&summary).Error; err != nil {
		t.Fatalf("查询行为汇总失败: %v", err)
	}
	if !summary.Purchased || summary.PurchaseCount != 1 {
		t.Errorf("行为汇总不符: purchased=%v count=%d", summary.Purchased, summary.PurchaseCount)
	}
}

// ==================== 原子性 ====================

func TestOrderService_CreateOrderRollbackOnStockShortage(t *testing.T) {
	db := setupTestDB(t)
	cartSvc := newCartService(db)
	orderSvc := newOrderService(db)
	ctx := context.Background()

	productA := seedProduct(t, db, "chair", 8000, 5)
	productB := seedProduct(t, db, "shelf", 12000, 3)
	visitor := model.AnonymousVisitor("sess-rollback")

	if _, err := cartSvc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: productA.ID, Quantity: 2}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}
	if _, err := cartSvc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: productB.ID, Quantity: 3}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}

	// 加车后 shelf 库存被其他订单买走
	db.Model(&model.Product{}).Where("id = ?", productB.ID).Update("stock", 1)

	_, err := orderSvc.CreateOrder(ctx, visitor, codOrderRequest(), RequestContext{})
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("期望 InsufficientStockError, 实际 %v", err)
	}
	if stockErr.ProductID != productB.ID {
		t.Errorf("期望缺货商品 %d, 实际 %d", productB.ID, stockErr.ProductID)
	}

	// 整单回滚：先扣的 chair 库存恢复，无订单，无购买事件，购物车保留
	var a model.Product
	db.First(&a, productA.ID)
	if a.Stock != 5 {
		t.Errorf("期望 chair 库存回滚到 5, 实际 %d", a.Stock)
	}

	var orderCount, interactionCount int64
	db.Model(&model.Order{}).Count(&orderCount)
	db.Model(&model.ProductInteraction{}).Where("interaction_type = ?", model.InteractionPurchase).Count(&interactionCount)
	if orderCount != 0 || interactionCount != 0 {
		t.Errorf("期望无订单无购买事件, 实际 orders=%d interactions=%d", orderCount, interactionCount)
	}

	cart, _ := cartSvc.GetCart(ctx, visitor)
	if len(cart.Items) != 2 {
		t.Errorf("期望购物车保留 2 项, 实际 %d", len(cart.Items))
	}
}

func TestOrderService_LastUnitGoesToOneBuyer(t *testing.T) {
	db := setupTestDB(t)
	cartSvc := newCartService(db)
	orderSvc := newOrderService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "vase", 3000, 1)

	first := model.AnonymousVisitor("sess-first")
	second := model.AnonymousVisitor("sess-second")
	if _, err := cartSvc.AddItem(ctx, first, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}
	if _, err := cartSvc.AddItem(ctx, second, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}

	// 最后一件只能卖给先到者
	if _, err := orderSvc.CreateOrder(ctx, first, codOrderRequest(), RequestContext{}); err != nil {
		t.Fatalf("首单应成功: %v", err)
	}
	_, err := orderSvc.CreateOrder(ctx, second, codOrderRequest(), RequestContext{})
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("次单应库存不足, 实际 %v", err)
	}

	var p model.Product
	db.First(&p, product.ID)
	if p.Stock != 0 {
		t.Errorf("期望库存 0, 实际 %d", p.Stock)
	}
	var orderCount int64
	db.Model(&model.Order{}).Count(&orderCount)
	if orderCount != 1 {
		t.Errorf("期望 1 张订单, 实际 %d", orderCount)
	}
}

// ==================== 边界 ====================

func TestOrderService_CreateOrderEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	orderSvc := newOrderService(db)

	_, err := orderSvc.CreateOrder(context.Background(), model.AnonymousVisitor("sess-empty"), codOrderRequest(), RequestContext{})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("期望 ErrCartEmpty, 实际 %v", err)
	}
}

func TestOrderService_StripeWithoutIntentStaysPending(t *testing.T) {
	db := setupTestDB(t)
	cartSvc := newCartService(db)
	orderSvc := newOrderService(db)
	ctx := context.Background()
	visitor := model.AnonymousVisitor("sess-stripe")

	product := seedProduct(t, db, "clock", 3200, 4)
	if _, err := cartSvc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("加购失败: %v", err)
	}

	req := codOrderRequest()
	req.PaymentMethod = model.PaymentMethodStripe
	req.PaymentIntentID = ""

	// 无支付引用的在线订单照常落库，等待后续支付
	order, err := orderSvc.CreateOrder(ctx, visitor, req, RequestContext{})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}
	if order.Status != model.OrderStatusPending || order.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("期望 pending/pending, 实际 %s/%s", order.Status, order.PaymentStatus)
	}
}

// ==================== 管理端 ====================

func TestOrderService_UpdateStatusValidatesEnum(t *testing.T) {
	db := setupTestDB(t)
	cartSvc := newCartService(db)
	orderSvc := newOrderService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "rug", 5000, 10)
	visitor := model.AnonymousVisitor("sess-admin")
	if _, err := cartSvc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}
	created, err := orderSvc.CreateOrder(ctx, visitor, codOrderRequest(), RequestContext{})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	bad := "teleported"
	if _, err := orderSvc.UpdateStatus(ctx, created.ID, &dto.UpdateOrderStatusRequest{Status: &bad}); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Fatalf("期望 ErrInvalidOrderStatus, 实际 %v", err)
	}

	// 合法状态可任意改写，包括回退
	shipped := model.OrderStatusShipped
	tracking := "TRK123"
	updated, err := orderSvc.UpdateStatus(ctx, created.ID, &dto.UpdateOrderStatusRequest{Status: &shipped, TrackingNumber: &tracking})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.Status != model.OrderStatusShipped || updated.TrackingNumber != "TRK123" {
		t.Errorf("更新结果不符: %+v", updated)
	}

	pending := model.OrderStatusPending
	if _, err := orderSvc.UpdateStatus(ctx, created.ID, &dto.UpdateOrderStatusRequest{Status: &pending}); err != nil {
		t.Errorf("状态回退应被允许: %v", err)
	}
}

func TestOrderService_TrackByNumber(t *testing.T) {
	db := setupTestDB(t)
	cartSvc := newCartService(db)
	orderSvc := newOrderService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "clock", 2000, 10)
	visitor := model.AnonymousVisitor("sess-track")
	if _, err := cartSvc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}
	created, err := orderSvc.CreateOrder(ctx, visitor, codOrderRequest(), RequestContext{})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	found, err := orderSvc.TrackByNumber(ctx, created.OrderNumber)
	if err != nil {
		t.Fatalf("追踪查询失败: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("期望订单 %d, 实际 %d", created.ID, found.ID)
	}

	if _, err := orderSvc.TrackByNumber(ctx, "ORD-00000000-NOPE"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("期望 ErrOrderNotFound, 实际 %v", err)
	}
}
