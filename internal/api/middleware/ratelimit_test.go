package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("requests beyond burst are rejected", func(t *testing.T) {
		stopCh := make(chan struct{})
		defer close(stopCh)

		rl := NewRateLimiter(1, 2, stopCh)
		handler := rl.Middleware(next)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			req.Header.Set(HeaderUserID, "42")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		stopCh := make(chan struct{})
		defer close(stopCh)

		rl := NewRateLimiter(1, 1, stopCh)
		handler := rl.Middleware(next)

		first := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		first.Header.Set(HeaderUserID, "1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		assert.Equal(t, http.StatusOK, rec.Code)

		again := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		again.Header.Set(HeaderUserID, "1")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, again)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		other := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		other.Header.Set(HeaderUserID, "2")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, other)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("anonymous clients keyed by remote address", func(t *testing.T) {
		stopCh := make(chan struct{})
		defer close(stopCh)

		rl := NewRateLimiter(1, 1, stopCh)
		handler := rl.Middleware(next)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/services/1/bookable-slots", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/v1/services/1/bookable-slots", nil)
		req.RemoteAddr = "10.0.0.1:54322"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "same IP shares one limiter regardless of port")
	})
}
