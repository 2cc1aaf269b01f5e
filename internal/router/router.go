package router

import (
	"github.com/gin-gonic/gin"

	"storefront_v1_202509/internal/controller"
	"storefront_v1_202509/internal/middleware"
	"storefront_v1_202509/internal/repository"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	sessionRepo repository.SessionRepository,
	userCtl *controller.UserController,
	productCtl *controller.ProductController,
	cartCtl *controller.CartController,
	orderCtl *controller.OrderController,
	analyticsCtl *controller.AnalyticsController) {

	// 所有接口都带匿名会话与可选登录态
	r.Use(middleware.VisitorSession(sessionRepo))
	r.Use(middleware.OptionalAuth())

	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			auth.POST("/register", userCtl.Register)
			auth.POST("/login", userCtl.Login)
			auth.POST("/refresh", userCtl.RefreshToken)
			auth.POST("/logout", userCtl.Logout)
		}

		// 个人信息（需登录）
		users := api.Group("/users", middleware.JWTAuth())
		{
			users.GET("/me", userCtl.GetProfile)
			users.PUT("/me", userCtl.UpdateProfile)
			users.PUT("/me/password", userCtl.ChangePassword)
		}

		// 商品目录（公开）
		products := api.Group("/products")
		{
			products.GET("", productCtl.ListProducts)
			products.GET("/:id", productCtl.GetProduct)
			products.GET("/slug/:slug", productCtl.GetProductBySlug)
		}
		api.GET("/categories", productCtl.ListCategories)

		// 购物车（账号或匿名会话均可）
		cart := api.Group("/cart")
		{
			cart.GET("", cartCtl.GetCart)
			cart.DELETE("", cartCtl.ClearCart)
			cart.POST("/items", cartCtl.AddItem)
			cart.PUT("/items/:id", cartCtl.UpdateItem)
			cart.DELETE("/items/:id", cartCtl.RemoveItem)
		}

		// 订单
		orders := api.Group("/orders")
		{
			orders.POST("", orderCtl.CreateOrder)
			orders.GET("", orderCtl.ListMyOrders)
			orders.POST("/payment-intent", orderCtl.CreatePaymentIntent)
			// 公开物流追踪，放在 :id 之前注册避免吞路由
			orders.GET("/track/:order_number", orderCtl.TrackOrder)
			orders.GET("/:id", orderCtl.GetOrder)
		}

		// 交互埋点
		interactions := api.Group("/interactions")
		{
			interactions.POST("", analyticsCtl.Track)
			interactions.GET("/behavior/:product_id", analyticsCtl.GetBehavior)
		}

		// 管理端（需登录 + 管理员）
		admin := api.Group("/admin", middleware.JWTAuth(), middleware.RequireAdmin())
		{
			admin.GET("/products", productCtl.AdminListProducts)
			admin.POST("/products", productCtl.CreateProduct)
			admin.PUT("/products/:id", productCtl.UpdateProduct)
			admin.DELETE("/products/:id", productCtl.DeleteProduct)
			admin.POST("/categories", productCtl.CreateCategory)

			admin.GET("/orders", orderCtl.AdminListOrders)
			admin.GET("/orders/stats", orderCtl.AdminOrderStats)
			admin.GET("/orders/:id", orderCtl.AdminGetOrder)
			admin.PATCH("/orders/:id", orderCtl.AdminUpdateOrder)

			analytics := admin.Group("/analytics")
			{
				analytics.GET("/overview", analyticsCtl.Overview)
				analytics.GET("/top-products", analyticsCtl.TopProducts)
				analytics.GET("/time-series", analyticsCtl.TimeSeries)
				analytics.GET("/funnel", analyticsCtl.Funnel)
				analytics.GET("/behavior-lists", analyticsCtl.BehaviorLists)
				analytics.GET("/categories", analyticsCtl.CategoryAnalytics)
				analytics.GET("/interactions", analyticsCtl.ListInteractions)
				analytics.GET("/export", analyticsCtl.ExportCSV)
				analytics.GET("/daily-stats", analyticsCtl.ListDailyStats)
			}
		}
	}
}
