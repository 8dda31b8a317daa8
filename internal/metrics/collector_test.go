package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/bloomhealth/internal/health"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()
	c.FetchCompleted(health.KindHeartRate, health.OutcomeLive)
	c.FetchCompleted(health.KindHeartRate, health.OutcomeLive)
	c.FetchCompleted(health.KindBloodGlucose, health.OutcomePlaceholder)
	c.PushCompleted(health.OutcomeError)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.fetches.WithLabelValues("heartRate", "live")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetches.WithLabelValues("bloodGlucose", "placeholder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pushes.WithLabelValues("error")))

	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions))
}

func TestCollector_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := NewCollector()
	r := gin.New()
	r.Use(c.Middleware())
	r.GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(c.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/ping", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "bloom_http_requests_total"))
	assert.True(t, strings.Contains(body, "bloom_active_sessions"))
}
