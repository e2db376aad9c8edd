package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medikart/pos-engine/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.POSHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api/pos")
	{
		api.POST("/sessions", handler.OpenSession)
		api.DELETE("/sessions/:sessionID", handler.CloseSession)
		api.GET("/sessions/:sessionID/cart", handler.GetCart)
		api.POST("/sessions/:sessionID/cart", handler.AddItem)
		api.DELETE("/sessions/:sessionID/cart/:lineID", handler.RemoveItem)
		api.POST("/sessions/:sessionID/checkout", handler.Checkout)
		api.GET("/products/:productID/batches", handler.ListBatches)
	}

	r.GET("/healthz", handler.Health)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
