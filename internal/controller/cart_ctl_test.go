package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/controller"
	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/repository"
	"storefront_v1_202509/internal/router"
	"storefront_v1_202509/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

func setupCtlTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{}, &model.AnonymousSession{},
		&model.Category{}, &model.Product{},
		&model.Cart{}, &model.CartItem{},
		&model.Order{}, &model.OrderItem{},
		&model.ProductInteraction{}, &model.UserBehaviorSummary{},
		&model.DailyProductStats{}, &model.DailyCategoryStats{},
	)
	if err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

// setupCtlRouter 按 main.go 的装配方式组一套完整路由
func setupCtlRouter(db *gorm.DB) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	behaviorRepo := repository.NewBehaviorRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	userSvc := service.NewUserService(userRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	trackingSvc := service.NewTrackingService(interactionRepo, behaviorRepo, productRepo)
	paymentSvc := service.NewPaymentService(&service.PaymentConfig{SecretKey: "sk_test"})
	orderSvc := service.NewOrderService(repository.NewCheckoutUnitOfWork(db), orderRepo, paymentSvc)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, interactionRepo)

	r := gin.New()
	router.InitRoutes(r,
		sessionRepo,
		controller.NewUserController(userSvc, cartSvc, orderSvc),
		controller.NewProductController(productSvc, trackingSvc),
		controller.NewCartController(cartSvc, trackingSvc),
		controller.NewOrderController(orderSvc),
		controller.NewAnalyticsController(trackingSvc, analyticsSvc),
	)
	return r
}

func seedCtlProduct(t *testing.T, db *gorm.DB, name string, priceCents int64, stock int) *model.Product {
	t.Helper()

	category := model.Category{Name: name + " 分类", Slug: name + "-cat", IsActive: true}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("插入分类失败: %v", err)
	}
	product := model.Product{
		Name:        name,
		Slug:        name,
		SKU:         "SKU-" + name,
		PriceAmount: priceCents,
		Stock:       stock,
		CategoryID:  category.ID,
		IsActive:    true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("插入商品失败: %v", err)
	}
	return &product
}

// doJSON 带匿名会话 Cookie 发起 JSON 请求
func doJSON(r *gin.Engine, method, path, sessionKey string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionKey != "" {
		req.AddCookie(&http.Cookie{Name: "sf_session", Value: sessionKey})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type cartEnvelope struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    dto.CartResponse `json:"data"`
}

// ==================== 测试用例 ====================

func TestCartController_AddAndGet(t *testing.T) {
	db := setupCtlTestDB(t)
	r := setupCtlRouter(db)
	product := seedCtlProduct(t, db, "lamp", 2999, 10)

	w := doJSON(r, http.MethodPost, "/api/cart/items", "ctl-sess",
		dto.AddToCartRequest{ProductID: product.ID, Quantity: 2})
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d: %s", w.Code, w.Body.String())
	}

	var resp cartEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Code != 0 {
		t.Fatalf("期望业务码 0, 实际 %d", resp.Code)
	}
	if len(resp.Data.Items) != 1 || resp.Data.Items[0].Quantity != 2 {
		t.Errorf("购物车内容不符: %+v", resp.Data)
	}
	if resp.Data.Subtotal != 59.98 {
		t.Errorf("期望小计 59.98, 实际 %v", resp.Data.Subtotal)
	}

	// 同一会话再查一致
	w = doJSON(r, http.MethodGet, "/api/cart", "ctl-sess", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d", w.Code)
	}
	resp = cartEnvelope{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data.Items) != 1 {
		t.Errorf("期望 1 个购物车项, 实际 %d", len(resp.Data.Items))
	}

	// 另一个会话看不到
	w = doJSON(r, http.MethodGet, "/api/cart", "other-sess", nil)
	resp = cartEnvelope{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data.Items) != 0 {
		t.Errorf("期望会话隔离的空购物车, 实际 %d 项", len(resp.Data.Items))
	}

	// 加购自动埋点
	var count int64
	db.Model(&model.ProductInteraction{}).
		Where("interaction_type = ? AND session_key = ?", model.InteractionAddToCart, "ctl-sess").
		Count(&count)
	if count != 1 {
		t.Errorf("期望 1 条加购埋点, 实际 %d", count)
	}
}

func TestCartController_ClearEmitsPerLineRemoval(t *testing.T) {
	db := setupCtlTestDB(t)
	r := setupCtlRouter(db)
	p1 := seedCtlProduct(t, db, "fork", 300, 10)
	p2 := seedCtlProduct(t, db, "spoon", 300, 10)

	doJSON(r, http.MethodPost, "/api/cart/items", "clear-sess",
		dto.AddToCartRequest{ProductID: p1.ID, Quantity: 2})
	doJSON(r, http.MethodPost, "/api/cart/items", "clear-sess",
		dto.AddToCartRequest{ProductID: p2.ID, Quantity: 1})

	w := doJSON(r, http.MethodDelete, "/api/cart", "clear-sess", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d: %s", w.Code, w.Body.String())
	}

	// 每个条目一条移除事件，不允许并成一条
	var interactions []model.ProductInteraction
	db.Where("interaction_type = ? AND session_key = ?", model.InteractionRemoveFromCart, "clear-sess").
		Find(&interactions)
	if len(interactions) != 2 {
		t.Fatalf("期望 2 条移除事件, 实际 %d", len(interactions))
	}
	for i := range interactions {
		if cleared, _ := interactions[i].Metadata["cart_cleared"].(bool); !cleared {
			t.Errorf("期望事件携带 cart_cleared 标记: %+v", interactions[i].Metadata)
		}
	}

	// 车已空
	w = doJSON(r, http.MethodGet, "/api/cart", "clear-sess", nil)
	var resp cartEnvelope
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data.Items) != 0 {
		t.Errorf("期望空购物车, 实际 %d 项", len(resp.Data.Items))
	}
}

func TestCartController_ErrorMapping(t *testing.T) {
	db := setupCtlTestDB(t)
	r := setupCtlRouter(db)
	product := seedCtlProduct(t, db, "stool", 1500, 2)

	// 商品不存在 → 404
	w := doJSON(r, http.MethodPost, "/api/cart/items", "err-sess",
		dto.AddToCartRequest{ProductID: 99999, Quantity: 1})
	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404, 实际 %d: %s", w.Code, w.Body.String())
	}

	// 库存不足 → 409
	w = doJSON(r, http.MethodPost, "/api/cart/items", "err-sess",
		dto.AddToCartRequest{ProductID: product.ID, Quantity: 3})
	if w.Code != http.StatusConflict {
		t.Errorf("期望 409, 实际 %d: %s", w.Code, w.Body.String())
	}

	// 参数缺失 → 400
	w = doJSON(r, http.MethodPost, "/api/cart/items", "err-sess",
		map[string]interface{}{"product_id": product.ID})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际 %d: %s", w.Code, w.Body.String())
	}
}
