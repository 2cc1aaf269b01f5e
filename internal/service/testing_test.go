package service

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/repository"
)

// ==================== 测试辅助 ====================

func setupTestDB(t *testing.T) *gorm.DB {
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

// seedProduct 插入一件上架商品
func seedProduct(t *testing.T, db *gorm.DB, name string, priceCents int64, stock int) *model.Product {
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

func newCartService(db *gorm.DB) *CartService {
	return NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db))
}

func newTrackingService(db *gorm.DB) *TrackingService {
	return NewTrackingService(
		repository.NewInteractionRepository(db),
		repository.NewBehaviorRepository(db),
		repository.NewProductRepository(db),
	)
}

func newOrderService(db *gorm.DB) *OrderService {
	return NewOrderService(
		repository.NewCheckoutUnitOfWork(db),
		repository.NewOrderRepository(db),
		NewPaymentService(&PaymentConfig{SecretKey: "sk_test"}),
	)
}

func newAnalyticsService(db *gorm.DB) *AnalyticsService {
	return NewAnalyticsService(
		repository.NewAnalyticsRepository(db),
		repository.NewInteractionRepository(db),
	)
}
