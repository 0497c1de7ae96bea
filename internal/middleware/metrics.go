package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vortechdev/enilai-gateway/internal/service"
)

// Metrics observes every request under its route template, so screen
// traffic aggregates per entity pattern instead of per concrete path.
// A nil service disables observation without breaking the chain.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Unmatched routes have no template; fall back to the raw path.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
