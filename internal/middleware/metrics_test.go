package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/A7maad1/LSA/internal/service"
)

func scrape(t *testing.T, metrics *service.MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/static"))
	r.GET("/activities/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/static/*file", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/activities/1", "/activities/2", "/wp-login.php", "/static/site.css"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, metrics)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/activities/:id",status="200"} 2`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.NotContains(t, body, "wp-login")
	assert.NotContains(t, body, "/static")
	assert.Equal(t, uint64(3), metrics.Snapshot().RequestsTotal)
}
