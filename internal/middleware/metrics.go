package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/A7maad1/LSA/internal/service"
)

// UnmatchedRoute labels requests that hit no registered route, so scanners
// probing random paths do not create a series per path.
const UnmatchedRoute = "unmatched"

// Metrics records request counts and latency by route template. Requests
// whose path starts with one of skip are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || skipped(c.Request.URL.Path, skip) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = UnmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func skipped(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
