package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"multiball-waitlist/pkg/middleware"
)

// NewRouter builds the gin engine with recovery, request IDs, access logging
// and CORS in front of the API routes.
func NewRouter(h *Handlers, allowedOrigin string, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Recovered from panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgGeneric})
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(allowedOrigin))

	h.Register(router)
	return router
}
