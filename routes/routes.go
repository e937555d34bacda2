package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/silkiy/storefront/cache"
	"github.com/silkiy/storefront/checkout"
	"github.com/silkiy/storefront/config"
	"github.com/silkiy/storefront/controllers"
	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/middleware"
)

type Deps struct {
	Mongo  *database.Mongo
	Cache  *cache.Cache
	Logger *slog.Logger
	Cfg    config.Config
}

func Register(r *gin.Engine, d Deps) {
	auth := &middleware.Auth{
		Secret:    []byte(d.Cfg.JWTSecret),
		Blacklist: d.Mongo.BlacklistedTokens,
	}
	limiter := middleware.NewRateLimiter(d.Cache.Client(), d.Logger)

	authCtl := &controllers.AuthController{
		DB: d.Mongo, Secret: []byte(d.Cfg.JWTSecret),
		Logger: d.Logger, Timeout: d.Cfg.RequestTimeout,
	}
	productCtl := &controllers.ProductController{
		DB: d.Mongo, Cache: d.Cache,
		Logger: d.Logger, Timeout: d.Cfg.RequestTimeout,
	}
	cartCtl := &controllers.CartController{
		DB: d.Mongo, Cache: d.Cache,
		Logger: d.Logger, Timeout: d.Cfg.RequestTimeout,
	}
	orderCtl := &controllers.OrderController{
		DB:      d.Mongo,
		Service: checkout.NewMongoService(d.Mongo, d.Logger),
		Cache:   d.Cache,
		Logger:  d.Logger,
		Timeout: d.Cfg.CheckoutTimeout,
	}
	orderAdminCtl := &controllers.OrderAdminController{
		DB: d.Mongo, Logger: d.Logger, Timeout: d.Cfg.RequestTimeout,
	}
	addressCtl := &controllers.AddressController{
		DB: d.Mongo, Logger: d.Logger, Timeout: d.Cfg.RequestTimeout,
	}
	contactCtl := &controllers.ContactController{
		DB: d.Mongo, Logger: d.Logger, Timeout: d.Cfg.RequestTimeout,
	}

	api := r.Group("/api")
	{
		api.POST("/register", authCtl.Register)
		api.POST("/login",
			limiter.Limit("login", d.Cfg.LoginRateLimit, d.Cfg.RateLimitWindow),
			authCtl.Login)
		api.POST("/logout", authCtl.Logout)

		api.GET("/products", productCtl.ListProducts)
		api.POST("/contact",
			limiter.Limit("contact", d.Cfg.ContactRateLimit, d.Cfg.RateLimitWindow),
			contactCtl.SubmitContact)

		protected := api.Group("/")
		protected.Use(auth.Authenticate())
		{
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.POST("/products", productCtl.CreateProduct)
				admin.PUT("/products/:id", productCtl.UpdateProduct)
				admin.DELETE("/products/:id", productCtl.DeleteProduct)
				admin.GET("/products", productCtl.ListProductsAdmin)

				admin.GET("/orders", orderAdminCtl.ListOrders)
				admin.GET("/orders/:id", orderAdminCtl.GetOrderByID)
				admin.PUT("/orders/:id/status", orderAdminCtl.UpdateOrderStatus)
				admin.PUT("/orders/:id/cancel", orderAdminCtl.CancelOrder)
			}

			user := protected.Group("/user")
			{
				user.POST("/cart", cartCtl.AddToCart)
				user.GET("/cart", cartCtl.GetCart)
				user.PUT("/cart/:productId", cartCtl.UpdateCart)
				user.DELETE("/cart/:productId", cartCtl.RemoveFromCart)

				user.POST("/orders",
					limiter.Limit("checkout", d.Cfg.CheckoutRateLimit, d.Cfg.RateLimitWindow),
					orderCtl.PlaceOrder)
				user.GET("/orders", orderCtl.GetOrders)
				user.PUT("/orders/:id/cancel", orderCtl.CancelOrder)

				user.POST("/addresses", addressCtl.CreateAddress)
				user.GET("/addresses", addressCtl.ListAddresses)
				user.PUT("/addresses/:id", addressCtl.UpdateAddress)
				user.DELETE("/addresses/:id", addressCtl.DeleteAddress)
			}
		}
	}
}
