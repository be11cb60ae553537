package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/api/handlers"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/api/middleware"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/metrics"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Webhook     *handlers.OrderWebhookHandler
	Checkout    *handlers.CheckoutHandler
	Products    *handlers.ProductsHandler
	AdminOrders *handlers.AdminOrdersHandler
	Locale      *handlers.LocaleHandler
}

// NewRouter builds the gin engine with all routes mounted
func NewRouter(cfg *config.Config, db *sql.DB, h Handlers, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(loggingMiddleware(logger))
	router.Use(customRecovery(logger))

	router.GET("/health", healthCheck(db))
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	{
		api.POST("/webhook/order", h.Webhook.Handle)

		api.POST("/checkout", middleware.Idempotency(), h.Checkout.Create)
		api.GET("/checkout/verify", h.Checkout.Verify)

		api.GET("/products", h.Products.List)
		api.GET("/products/:handle", h.Products.Get)
		api.GET("/designs", h.Products.ListDesigns)

		api.GET("/locale/currencies", h.Locale.ListCurrencies)
		api.GET("/locale/languages", h.Locale.ListLanguages)
		api.GET("/locale/rates", h.Locale.ListRates)

		admin := api.Group("/admin", middleware.AdminAuth(cfg.Admin, logger))
		{
			admin.GET("/orders", h.AdminOrders.List)
			admin.GET("/orders/:id", h.AdminOrders.Get)
			admin.POST("/orders/:id/fulfill", h.AdminOrders.Fulfill)
			admin.POST("/orders/fulfill-bulk", h.AdminOrders.FulfillBulk)
			admin.POST("/orders/:id/tracking", h.AdminOrders.Tracking)
			admin.POST("/orders/:id/notes", h.AdminOrders.Notes)
			admin.POST("/orders/:id/delivered", h.AdminOrders.Delivered)

			// Upserts answer both verbs: POST creates, PATCH updates, one
			// handler either way
			admin.POST("/locale/currencies", h.Locale.UpsertCurrency)
			admin.PATCH("/locale/currencies", h.Locale.UpsertCurrency)
			admin.DELETE("/locale/currencies/:code", h.Locale.DeleteCurrency)
			admin.POST("/locale/languages", h.Locale.UpsertLanguage)
			admin.PATCH("/locale/languages", h.Locale.UpsertLanguage)
			admin.DELETE("/locale/languages/:code", h.Locale.DeleteLanguage)
			admin.POST("/locale/rates", h.Locale.UpsertRate)
			admin.PATCH("/locale/rates", h.Locale.UpsertRate)
			admin.DELETE("/locale/rates/:from/:to", h.Locale.DeleteRate)
			admin.POST("/locale/rates/sync", h.Locale.SyncRates)
		}
	}

	return router
}

// healthCheck pings the database so load balancers pull a node whose pool
// is dead
func healthCheck(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.PingContext(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
		})
	}
}

// loggingMiddleware logs every request with method, path, status, and latency
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// customRecovery turns panics into 500s with a logged stack instead of a
// dropped connection
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
