package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"termin/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(body))
	})
}

func TestIdempotency_ReplaysSuccessWithoutSecondCall(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls int32
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"abc123"}}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, w.Code)
		}
		if !strings.Contains(w.Body.String(), "abc123") {
			t.Errorf("request %d: body not replayed: %s", i, w.Body.String())
		}
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("handler called %d times, want 1", got)
	}
}

func TestIdempotency_FailuresAreNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls int32
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "key-2")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("conflict responses must be re-evaluated, handler called %d times", got)
	}
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls int32
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader("{}"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("keyless requests must not be deduplicated, handler called %d times", got)
	}
}

func TestClientRateLimit_BlocksAfterLimit(t *testing.T) {
	limiter := NewClientRateLimiter(2, time.Minute, testLogger())
	defer limiter.Stop()

	handler := ClientRateLimit(limiter)(okHandler("ok"))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/book", nil)
		req.RemoteAddr = "203.0.113.1:4242"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/book", nil)
	req.RemoteAddr = "203.0.113.1:4242"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after limit, got %d", w.Code)
	}

	// A different client is unaffected.
	req = httptest.NewRequest(http.MethodPost, "/api/book", nil)
	req.RemoteAddr = "203.0.113.2:4242"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("other client blocked: %d", w.Code)
	}
}

func TestClientRateLimit_UsesForwardedFor(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute, testLogger())
	defer limiter.Stop()

	handler := ClientRateLimit(limiter)(okHandler("ok"))

	for i, want := range []int{http.StatusCreated, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/book", nil)
		req.RemoteAddr = "10.0.0.1:1234" // proxy
		req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("request %d: expected %d, got %d", i, want, w.Code)
		}
	}
}

func TestCORS_AllowedOriginAndPreflight(t *testing.T) {
	handler := CORS([]string{"https://booking.example.com"})(okHandler("ok"))

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	req.Header.Set("Origin", "https://booking.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://booking.example.com" {
		t.Errorf("missing allow-origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/book", nil)
	req.Header.Set("Origin", "https://booking.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight: expected 204, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key") {
		t.Error("preflight must allow the Idempotency-Key header")
	}
}

func TestCORS_DisallowedPreflightRejected(t *testing.T) {
	handler := CORS([]string{"https://booking.example.com"})(okHandler("ok"))

	req := httptest.NewRequest(http.MethodOptions, "/api/book", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for disallowed preflight, got %d", w.Code)
	}
}

func TestContentTypeValidation_RejectsNonJSONPost(t *testing.T) {
	handler := ContentTypeValidation(testLogger())(okHandler("ok"))

	req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}

func TestContentTypeValidation_GetPassesWithoutHeader(t *testing.T) {
	handler := ContentTypeValidation(testLogger())(okHandler("ok"))

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("GET must pass without Content-Type, got %d", w.Code)
	}
}

func TestRequestTimeout_SlowHandlerGets503(t *testing.T) {
	handler := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 on timeout, got %d", w.Code)
	}
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	handler := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
