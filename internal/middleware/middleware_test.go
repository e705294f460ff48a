package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	handler := SecurityHeaders(false)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("Expected %s=%q, got %q", header, value, got)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set on plain HTTP")
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{name: "get without content type", method: "GET", wantStatus: http.StatusOK},
		{name: "post json", method: "POST", contentType: "application/json", wantStatus: http.StatusOK},
		{name: "post json with charset", method: "POST", contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "post missing content type", method: "POST", wantStatus: http.StatusBadRequest},
		{name: "post wrong content type", method: "POST", contentType: "text/plain", wantStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := ContentType(okHandler())
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	t.Parallel()

	handler := MaxRequestSize(16)(okHandler())

	small := httptest.NewRequest("POST", "/", strings.NewReader("tiny"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, small)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for small body, got %d", rec.Code)
	}

	large := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 64)))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, large)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413 for oversized body, got %d", rec.Code)
	}
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	t.Parallel()

	handler := ErrorHandler(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/goals", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "An unexpected error occurred") {
		t.Errorf("Expected generic error message, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("Panic detail must not leak to the client")
	}
}

func TestAuth(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret-please-rotate")

	token, err := IssueToken(secret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	expired, err := IssueToken(secret, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken (expired): %v", err)
	}

	wrongKey, err := IssueToken([]byte("some-other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken (wrong key): %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "wrong signing key", header: "Bearer " + wrongKey, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := Auth(secret)(okHandler())
			req := httptest.NewRequest("GET", "/goals", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRateLimit_MemoryStore(t *testing.T) {
	t.Parallel()

	mw, err := RateLimit(nil, "2-H")
	if err != nil {
		t.Fatalf("RateLimit: %v", err)
	}
	handler := mw(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/ai/brief", nil)
		req.Header.Set("X-Real-IP", "203.0.113.50")
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ai/brief", nil)
	req.Header.Set("X-Real-IP", "203.0.113.50")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after limit, got %d", rec.Code)
	}
}
