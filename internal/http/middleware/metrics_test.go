package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRouteAndStatus(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/errors/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/errors/:id", "200"))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/errors/42", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", w.Code)
		}
	}

	after := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/errors/:id", "200"))
	if after-before != 3 {
		t.Fatalf("counter delta = %v; want 3", after-before)
	}
}

func TestMetrics_UnmatchedRouteUsesRawPath(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())

	before := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/nope", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}

	after := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/nope", "404"))
	if after-before != 1 {
		t.Fatalf("counter delta = %v; want 1", after-before)
	}
}

func TestMetrics_InflightReturnsToZero(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/", func(c *gin.Context) {
		if got := testutil.ToFloat64(httpInflight); got < 1 {
			t.Fatalf("inflight during handler = %v; want >= 1", got)
		}
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight after request = %v; want 0", got)
	}
}
