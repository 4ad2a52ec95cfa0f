package routes

import (
	"spooky-styles/config"
	"spooky-styles/controllers"
	"spooky-styles/logger"
	"spooky-styles/middleware"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const webhookPrefix = "/api/payments/webhook"

type Controllers struct {
	Auth        *controllers.AuthController
	Product     *controllers.ProductController
	Cart        *controllers.CartController
	Order       *controllers.OrderController
	Payment     *controllers.PaymentController
	Inspiration *controllers.InspirationController
	Analytics   *controllers.AnalyticsController
	User        *controllers.UserController
	Upload      *controllers.UploadController
	Health      *controllers.HealthController
	CSRF        *controllers.CSRFController
}

type Options struct {
	Config *config.Config
	Log    *logger.Logger
	Tokens *utils.TokenManager
	Redis  *redis.Client
	CSRF   *middleware.CSRFStore
}

func SetupRoutes(router *gin.Engine, ctrl Controllers, opts Options) {
	cfg := opts.Config

	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(opts.Log),
		middleware.ErrorHandler(),
		middleware.CORSMiddleware(cfg.App.AllowedOrigins),
		middleware.SecureHeaders(cfg.IsProduction()),
	)
	router.NoRoute(middleware.NotFound)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", ctrl.Health.Health)
	if cfg.Upload.Driver == "local" {
		router.Static("/uploads", cfg.Upload.Dir)
	}

	api := router.Group("/api")
	api.Use(
		middleware.SanitizeBody(webhookPrefix),
		middleware.NewRateLimiter("api", opts.Redis, cfg.App.RateLimit, cfg.App.RateWindow).Middleware(),
		middleware.GuestSession(),
		middleware.OptionalAuth(opts.Tokens),
	)
	if cfg.App.CSRFEnabled && opts.CSRF.Enabled() {
		api.Use(middleware.CSRFProtect(opts.CSRF, webhookPrefix))
	}

	requireAuth := middleware.RequireAuth(opts.Tokens)

	api.GET("/csrf-token", ctrl.CSRF.Token)

	auth := api.Group("/auth")
	auth.Use(middleware.NewRateLimiter("auth", opts.Redis, cfg.App.AuthRateLimit, cfg.App.RateWindow).Middleware())
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.GET("/me", requireAuth, ctrl.Auth.Me)
		auth.PATCH("/profile", requireAuth, ctrl.Auth.UpdateProfile)
		auth.POST("/change-password", requireAuth, ctrl.Auth.ChangePassword)
	}

	products := api.Group("/products")
	{
		products.GET("", ctrl.Product.List)
		products.GET("/categories", ctrl.Product.Categories)
		products.GET("/:id", ctrl.Product.Get)
	}

	cart := api.Group("/cart")
	{
		cart.GET("", ctrl.Cart.Get)
		cart.DELETE("", ctrl.Cart.Clear)
		cart.POST("/items", ctrl.Cart.AddItem)
		cart.PUT("/items/:itemId", ctrl.Cart.UpdateItem)
		cart.DELETE("/items/:itemId", ctrl.Cart.RemoveItem)
		cart.POST("/merge", requireAuth, ctrl.Cart.Merge)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", ctrl.Order.Checkout)
		orders.GET("/lookup", ctrl.Order.Lookup)
		orders.GET("", requireAuth, ctrl.Order.ListMine)
		orders.GET("/:id", requireAuth, ctrl.Order.Get)
	}

	payments := api.Group("/payments")
	{
		payments.POST("/stripe/intent", ctrl.Payment.CreateStripeIntent)
		payments.POST("/paystack/initialize", ctrl.Payment.InitializePaystack)
		payments.POST("/paystack/verify", ctrl.Payment.VerifyPaystack)
		payments.POST("/webhook/stripe", ctrl.Payment.StripeWebhook)
		payments.POST("/webhook/paystack", ctrl.Payment.PaystackWebhook)
	}

	inspirations := api.Group("/inspirations")
	{
		inspirations.GET("", ctrl.Inspiration.List)
		inspirations.GET("/:id", ctrl.Inspiration.Get)
	}

	analytics := api.Group("/analytics")
	{
		analytics.POST("/pageview", ctrl.Analytics.TrackPageView)
		analytics.POST("/event", ctrl.Analytics.TrackEvent)
		analytics.POST("/error", ctrl.Analytics.LogError)
	}

	admin := api.Group("/admin")
	admin.Use(requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/users", ctrl.User.List)
		admin.GET("/users/:id", ctrl.User.Get)
		admin.PATCH("/users/:id/role", ctrl.User.UpdateRole)
		admin.DELETE("/users/:id", ctrl.User.Delete)

		admin.GET("/products/export", ctrl.Product.Export)
		admin.POST("/products", ctrl.Product.Create)
		admin.PATCH("/products/:id", ctrl.Product.Update)
		admin.DELETE("/products/:id", ctrl.Product.Delete)
		admin.POST("/products/:id/colors", ctrl.Product.AddColor)
		admin.DELETE("/products/:id/colors/:colorId", ctrl.Product.DeleteColor)
		admin.POST("/products/:id/image", ctrl.Product.UploadImage)

		admin.GET("/orders", ctrl.Order.List)
		admin.GET("/orders/export", ctrl.Order.Export)
		admin.GET("/orders/ws", ctrl.Order.Stream)
		admin.GET("/orders/:id", ctrl.Order.AdminGet)
		admin.PATCH("/orders/:id/status", ctrl.Order.UpdateStatus)

		admin.GET("/inspirations", ctrl.Inspiration.AdminList)
		admin.POST("/inspirations", ctrl.Inspiration.Create)
		admin.GET("/inspirations/:id", ctrl.Inspiration.AdminGet)
		admin.PUT("/inspirations/:id", ctrl.Inspiration.Update)
		admin.DELETE("/inspirations/:id", ctrl.Inspiration.Delete)
		admin.POST("/inspirations/:id/products", ctrl.Inspiration.AttachProduct)
		admin.PUT("/inspirations/:id/products/order", ctrl.Inspiration.ReorderProducts)
		admin.DELETE("/inspirations/:id/products/:productId", ctrl.Inspiration.DetachProduct)

		admin.GET("/analytics/summary", ctrl.Analytics.Summary)

		admin.POST("/uploads", ctrl.Upload.Upload)
	}
}
