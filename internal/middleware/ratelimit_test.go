package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/merge", RateLimit(1, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/merge", nil)
	req.RemoteAddr = "10.0.0.1:12345"

	first := httptest.NewRecorder()
	router.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRateLimitIsPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/merge", RateLimit(1, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/merge", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestRateLimitKeysOnForwardedClient(t *testing.T) {
	// プロキシ経由のリクエストは接続元アドレスではなく転送元クライアントで区別する
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/merge", RateLimit(1, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i, client := range []string{"203.0.113.7", "203.0.113.8"} {
		req := httptest.NewRequest(http.MethodGet, "/merge", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/merge", nil)
	req.RemoteAddr = "10.0.0.1:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("repeat client status = %d, want 429", rec.Code)
	}
}
