package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"storefront_v1_202509/internal/controller"
	"storefront_v1_202509/internal/middleware"
	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/repository"
	"storefront_v1_202509/internal/router"
	"storefront_v1_202509/internal/service"
	"storefront_v1_202509/internal/task"
	"storefront_v1_202509/pkg/config"
	"storefront_v1_202509/pkg/database"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWTSecret,
		AccessTokenTTL:  time.Duration(cfg.JWTExpireHours) * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "storefront",
	})
	middleware.SetVisitorConfig(&middleware.VisitorConfig{
		CookieName: cfg.SessionCookieName,
		MaxAgeDays: cfg.SessionMaxAgeDays,
	})

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(db, cfg)

	// 4. 启动定时任务
	statsTask := task.NewDailyStatsTask(deps.Services.Analytics, cfg.StatsCronSpec)
	statsTask.Start()
	defer statsTask.Stop()

	// 5. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		deps.Repos.Session,
		deps.Controllers.User,
		deps.Controllers.Product,
		deps.Controllers.Cart,
		deps.Controllers.Order,
		deps.Controllers.Analytics,
	)

	// 6. 启动服务
	startServer(r, cfg.ServerPort)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	User        repository.UserRepository
	Session     repository.SessionRepository
	Product     repository.ProductRepository
	Category    repository.CategoryRepository
	Cart        repository.CartRepository
	Order       repository.OrderRepository
	Interaction repository.InteractionRepository
	Behavior    repository.BehaviorRepository
	Analytics   repository.AnalyticsRepository
	CheckoutUow *repository.CheckoutUnitOfWork
}

// Services 服务集合
type Services struct {
	User      *service.UserService
	Product   *service.ProductService
	Cart      *service.CartService
	Tracking  *service.TrackingService
	Payment   *service.PaymentService
	Order     *service.OrderService
	Analytics *service.AnalyticsService
}

// Controllers 控制器集合
type Controllers struct {
	User      *controller.UserController
	Product   *controller.ProductController
	Cart      *controller.CartController
	Order     *controller.OrderController
	Analytics *controller.AnalyticsController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.DatabaseDSN,
		// 用户与会话
		&model.User{}, &model.AnonymousSession{},
		// 商品目录
		&model.Category{}, &model.Product{},
		// 购物车
		&model.Cart{}, &model.CartItem{},
		// 订单
		&model.Order{}, &model.OrderItem{},
		// 交互与统计
		&model.ProductInteraction{}, &model.UserBehaviorSummary{},
		&model.DailyProductStats{}, &model.DailyCategoryStats{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:        repository.NewUserRepository(db),
		Session:     repository.NewSessionRepository(db),
		Product:     repository.NewProductRepository(db),
		Category:    repository.NewCategoryRepository(db),
		Cart:        repository.NewCartRepository(db),
		Order:       repository.NewOrderRepository(db),
		Interaction: repository.NewInteractionRepository(db),
		Behavior:    repository.NewBehaviorRepository(db),
		Analytics:   repository.NewAnalyticsRepository(db),
		CheckoutUow: repository.NewCheckoutUnitOfWork(db),
	}

	// -------- Service 层 --------
	paymentSvc := service.NewPaymentService(&service.PaymentConfig{
		SecretKey: cfg.StripeSecretKey,
		BaseURL:   cfg.StripeBaseURL,
	})

	services := &Services{
		User:      service.NewUserService(repos.User),
		Product:   service.NewProductService(repos.Product, repos.Category),
		Cart:      service.NewCartService(repos.Cart, repos.Product),
		Tracking:  service.NewTrackingService(repos.Interaction, repos.Behavior, repos.Product),
		Payment:   paymentSvc,
		Order:     service.NewOrderService(repos.CheckoutUow, repos.Order, paymentSvc),
		Analytics: service.NewAnalyticsService(repos.Analytics, repos.Interaction),
	}

	// -------- Controller 层 --------
	controllers := &Controllers{
		User:      controller.NewUserController(services.User, services.Cart, services.Order),
		Product:   controller.NewProductController(services.Product, services.Tracking),
		Cart:      controller.NewCartController(services.Cart, services.Tracking),
		Order:     controller.NewOrderController(services.Order),
		Analytics: controller.NewAnalyticsController(services.Tracking, services.Analytics),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// startServer 启动服务
func startServer(r *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
