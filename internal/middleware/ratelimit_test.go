package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testConfig はテスト用の小さなバースト設定を返す。
func testConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    3,
		ImportRate:      rate.Limit(1.0 / 60.0),
		ImportBurst:     1,
		CleanupInterval: time.Minute,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestGeneralMiddleware_AllowsWithinBurst はバースト内のリクエストが
// 通過することをテストする。
func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "203.0.113.1:54321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

// TestGeneralMiddleware_RejectsOverBurst はバースト超過で429と
// Retry-Afterが返ることをテストする。
func TestGeneralMiddleware_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	var lastCode int
	var lastRec *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "203.0.113.1:54321"
		lastRec = httptest.NewRecorder()
		handler.ServeHTTP(lastRec, req)
		lastCode = lastRec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", lastCode)
	}
	if lastRec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header is missing")
	}
}

// TestGeneralMiddleware_PerClientIsolation はクライアントIPごとに
// リミッターが独立することをテストする。
func TestGeneralMiddleware_PerClientIsolation(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	// 最初のクライアントのバーストを使い切る
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "203.0.113.1:54321"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// 別クライアントには影響しない
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = "203.0.113.2:54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", rl.GeneralLimiterCount())
	}
}

// TestImportMiddleware_IndependentOfGeneral はインポート用リミッターが
// API全般とは独立に動作することをテストする。
func TestImportMiddleware_IndependentOfGeneral(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	generalHandler := rl.GeneralMiddleware()(okHandler())
	importHandler := rl.ImportMiddleware()(okHandler())

	// インポートのバースト（1）を使い切る
	req := httptest.NewRequest(http.MethodPost, "/api/affiliate/import", nil)
	req.RemoteAddr = "203.0.113.1:54321"
	importHandler.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/api/affiliate/import", nil)
	req.RemoteAddr = "203.0.113.1:54321"
	rec := httptest.NewRecorder()
	importHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("import status = %d, want 429", rec.Code)
	}

	// API全般のリミッターは消費されていない
	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = "203.0.113.1:54321"
	rec = httptest.NewRecorder()
	generalHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("general status = %d, want 200", rec.Code)
	}
}

// TestClientIP はクライアントIPの導出をテストする。
func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"RemoteAddrから", "203.0.113.1:54321", "", "203.0.113.1"},
		{"X-Forwarded-For優先", "10.0.0.1:1234", "198.51.100.7", "198.51.100.7"},
		{"X-Forwarded-Forの先頭エントリ", "10.0.0.1:1234", "198.51.100.7, 10.0.0.2", "198.51.100.7"},
		{"ポートなしRemoteAddr", "203.0.113.1", "", "203.0.113.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
