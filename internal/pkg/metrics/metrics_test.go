package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHandlerExposesCollectors(t *testing.T) {
	WsEvents.WithLabelValues("sendMessage", ResultOK).Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(WsEvents.WithLabelValues("sendMessage", ResultOK)), float64(1))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rendezvous_ws_events_total")
	assert.Contains(t, w.Body.String(), "rendezvous_ws_connections")
}
