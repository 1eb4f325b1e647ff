package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/admin/users/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"USR-1", "USR-2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/users/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/admin/users/:id", "204"))
	assert.Equal(t, float64(2), got)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.httpInFlight))
}

func TestDomainCounters(t *testing.T) {
	m := NewMetrics()
	m.AuthOutcome("login", "success")
	m.RateLimited("login")
	m.RateLimited("login")
	m.AuditDropped()
	m.Notification("failed")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.authOutcomes.WithLabelValues("login", "success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.rateLimited.WithLabelValues("login")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.auditDropped))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notifications.WithLabelValues("failed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuthOutcome("login", "success")
		m.RateLimited("ip")
		m.AuditDropped()
		m.Notification("sent")
	})
}

func TestHandler_Exposes(t *testing.T) {
	m := NewMetrics()
	m.AuthOutcome("register", "success")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `identity_auth_operations_total{operation="register",outcome="success"} 1`)
}
