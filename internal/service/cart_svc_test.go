package service

import (
	"context"
	"errors"
	"testing"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/model"
)

// ==================== 购物车基本操作 ====================

func TestCartService_AddItemAccumulates(t *testing.T) {
	db := setupTestDB(t)
	svc := newCartService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "mouse", 4999, 10)
	visitor := model.AnonymousVisitor("sess-1")

	// 同一商品加两次，数量应累加为一项
	if _, err := svc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("第一次加车失败: %v", err)
	}
	cart, err := svc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("第二次加车失败: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("期望 1 个购物车项, 实际 %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("期望数量 5, 实际 %d", cart.Items[0].Quantity)
	}
	if cart.TotalItems != 5 {
		t.Errorf("期望总数量 5, 实际 %d", cart.TotalItems)
	}
	if cart.Subtotal != 249.95 {
		t.Errorf("期望小计 249.95, 实际 %v", cart.Subtotal)
	}
}

func TestCartService_AddItemStockLimit(t *testing.T) {
	db := setupTestDB(t)
	svc := newCartService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "keyboard", 9900, 3)
	visitor := model.AnonymousVisitor("sess-2")

	if _, err := svc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}

	// 累加后超出库存应被拒
	_, err := svc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 2})
	if err == nil {
		t.Fatal("期望库存不足错误, 实际成功")
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("期望 InsufficientStockError, 实际 %T", err)
	}
	if stockErr.Available != 3 || stockErr.Requested != 4 {
		t.Errorf("错误内容不符: %+v", stockErr)
	}
}

func TestCartService_UpdateItemRejectsNonPositive(t *testing.T) {
	db := setupTestDB(t)
	svc := newCartService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "monitor", 19900, 5)
	visitor := model.AnonymousVisitor("sess-3")

	cart, err := svc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("加车失败: %v", err)
	}

	// 数量 0 不是删除的快捷方式，移除必须走 RemoveItem
	for _, quantity := range []int{0, -1} {
		if _, err := svc.UpdateItem(ctx, visitor, cart.Items[0].ID, &dto.UpdateCartItemRequest{Quantity: quantity}); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("数量 %d 期望 ErrInvalidQuantity, 实际 %v", quantity, err)
		}
	}

	// 原条目保持不动
	cart, err = svc.GetCart(ctx, visitor)
	if err != nil {
		t.Fatalf("查车失败: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Errorf("期望条目原样保留, 实际 %+v", cart.Items)
	}
}

func TestCartService_MissingItemIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newCartService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "desk", 45000, 5)
	visitor := model.AnonymousVisitor("sess-miss")

	if _, err := svc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("加车失败: %v", err)
	}

	// 不存在的条目要映射成业务错误，不能漏出底层错误
	if _, _, err := svc.RemoveItem(ctx, visitor, 99999); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("移除不存在条目期望 ErrCartItemNotFound, 实际 %v", err)
	}
	if _, err := svc.UpdateItem(ctx, visitor, 99999, &dto.UpdateCartItemRequest{Quantity: 1}); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("更新不存在条目期望 ErrCartItemNotFound, 实际 %v", err)
	}
}

func TestCartService_GetCartDoesNotCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := newCartService(db)
	ctx := context.Background()

	// 查询不应隐式建车
	cart, err := svc.GetCart(ctx, model.AnonymousVisitor("sess-empty"))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if cart.ID != 0 || len(cart.Items) != 0 {
		t.Errorf("期望空购物车视图, 实际 %+v", cart)
	}

	var count int64
	db.Model(&model.Cart{}).Count(&count)
	if count != 0 {
		t.Errorf("期望 0 行购物车, 实际 %d", count)
	}
}

// ==================== 登录合并 ====================

func TestCartService_MergeOnLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newCartService(db)
	ctx := context.Background()

	shared := seedProduct(t, db, "cable", 599, 100)
	onlySession := seedProduct(t, db, "hub", 2999, 100)

	user := model.User{Email: "buyer@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("插入用户失败: %v", err)
	}

	sessionVisitor := model.AnonymousVisitor("sess-merge")
	accountVisitor := model.AccountVisitor(user.ID)

	// 账号车里已有 shared ×2，会话车里 shared ×3 + hub ×1
	if _, err := svc.AddItem(ctx, accountVisitor, &dto.AddToCartRequest{ProductID: shared.ID, Quantity: 2}); err != nil {
		t.Fatalf("账号加车失败: %v", err)
	}
	if _, err := svc.AddItem(ctx, sessionVisitor, &dto.AddToCartRequest{ProductID: shared.ID, Quantity: 3}); err != nil {
		t.Fatalf("会话加车失败: %v", err)
	}
	if _, err := svc.AddItem(ctx, sessionVisitor, &dto.AddToCartRequest{ProductID: onlySession.ID, Quantity: 1}); err != nil {
		t.Fatalf("会话加车失败: %v", err)
	}

	resp, err := svc.MergeOnLogin(ctx, "sess-merge", user.ID)
	if err != nil {
		t.Fatalf("合并失败: %v", err)
	}
	if resp.MergedItems != 2 {
		t.Errorf("期望并入 2 项, 实际 %d", resp.MergedItems)
	}

	// 同商品数量相加，会话独有商品整项迁移
	if len(resp.Cart.Items) != 2 {
		t.Fatalf("期望合并后 2 项, 实际 %d", len(resp.Cart.Items))
	}
	quantities := map[int64]int{}
	for _, item := range resp.Cart.Items {
		quantities[item.ProductID] = item.Quantity
	}
	if quantities[shared.ID] != 5 {
		t.Errorf("期望 shared 数量 5, 实际 %d", quantities[shared.ID])
	}
	if quantities[onlySession.ID] != 1 {
		t.Errorf("期望 hub 数量 1, 实际 %d", quantities[onlySession.ID])
	}

	// 会话购物车应已删除
	sessionCart, err := svc.GetCart(ctx, sessionVisitor)
	if err != nil {
		t.Fatalf("查询会话购物车失败: %v", err)
	}
	if len(sessionCart.Items) != 0 {
		t.Errorf("期望会话购物车已清空, 实际 %d 项", len(sessionCart.Items))
	}
}

func TestCartService_MergeOnLoginNoSessionCart(t *testing.T) {
	db := setupTestDB(t)
	svc := newCartService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "stand", 1599, 10)

	user := model.User{Email: "solo@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("插入用户失败: %v", err)
	}
	if _, err := svc.AddItem(ctx, model.AccountVisitor(user.ID), &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("账号加车失败: %v", err)
	}

	// 无会话购物车时合并是空操作，账号车保持不变
	resp, err := svc.MergeOnLogin(ctx, "sess-none", user.ID)
	if err != nil {
		t.Fatalf("合并失败: %v", err)
	}
	if resp.MergedItems != 0 {
		t.Errorf("期望并入 0 项, 实际 %d", resp.MergedItems)
	}
	if len(resp.Cart.Items) != 1 {
		t.Errorf("期望账号购物车保持 1 项, 实际 %d", len(resp.Cart.Items))
	}
}

func TestCartService_MergeOnLoginDropsEmptySessionCart(t *testing.T) {
	db := setupTestDB(t)
	svc := newCartService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "tray", 899, 10)
	visitor := model.AnonymousVisitor("sess-empty")

	// 加车再移除，留下一个空的会话购物车
	cart, err := svc.AddItem(ctx, visitor, &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("加车失败: %v", err)
	}
	if _, _, err := svc.RemoveItem(ctx, visitor, cart.Items[0].ID); err != nil {
		t.Fatalf("移除失败: %v", err)
	}

	user := model.User{Email: "empty@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("插入用户失败: %v", err)
	}

	if _, err := svc.MergeOnLogin(ctx, "sess-empty", user.ID); err != nil {
		t.Fatalf("合并失败: %v", err)
	}

	// 空的会话购物车也必须被删除，不能留尸体
	var count int64
	db.Model(&model.Cart{}).Where("session_key = ?", "sess-empty").Count(&count)
	if count != 0 {
		t.Errorf("期望会话购物车已删除, 实际残留 %d 行", count)
	}
}
