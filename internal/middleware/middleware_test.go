package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientLimiter_Allow(t *testing.T) {
	limiter := NewClientLimiter(1, 3)

	// 突发额度内应该允许
	for i := 0; i < 3; i++ {
		if !limiter.Allow("client1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 超出突发额度应该拒绝
	if limiter.Allow("client1") {
		t.Error("Request 4 should be denied")
	}

	// 不同客户端应该允许
	if !limiter.Allow("client2") {
		t.Error("Different client should be allowed")
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	limiter := NewClientLimiter(1, 1)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if !strings.Contains(second.Body.String(), "rate_limit") {
		t.Errorf("响应体应包含限流错误: %s", second.Body.String())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		expected string
	}{
		{
			name: "代理头取第一跳",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
			},
			expected: "1.2.3.4",
		},
		{
			name: "单个代理头",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "9.9.9.9")
			},
			expected: "9.9.9.9",
		},
		{
			name: "RemoteAddr剥离端口",
			setup: func(r *http.Request) {
				r.RemoteAddr = "192.168.1.10:443"
			},
			expected: "192.168.1.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)

			if got := clientIP(req); got != tt.expected {
				t.Errorf("clientIP() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := r.Context().Value("request_id").(string); !ok || id == "" {
			t.Error("上下文中应有请求ID")
		}
	}))

	// 未携带时自动生成
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("应自动生成X-Request-ID")
	}

	// 已携带时透传
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req_custom")
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req_custom" {
		t.Errorf("X-Request-ID = %s, want req_custom", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/optimize", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("预检请求状态码 = %d, want 204", rec.Code)
	}
	if called {
		t.Error("预检请求不应到达业务处理器")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("应设置跨域响应头")
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal_error") {
		t.Errorf("响应体应包含错误码: %s", rec.Body.String())
	}
}

func TestLogging_PassesThroughStatus(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/tasks", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}
