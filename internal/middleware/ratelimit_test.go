package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/stash/internal/model"
	"golang.org/x/time/rate"
)

// newLimitedRequest はSubject注入済みのリクエストを生成する。
func newLimitedRequest(subjectID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	ctx := ContextWithSubject(req.Context(), &model.Subject{ID: subjectID}, "token")
	return req.WithContext(ctx)
}

// TestNewRateLimiterConfig はreq/minからの変換を検証する。
func TestNewRateLimiterConfig(t *testing.T) {
	cfg := NewRateLimiterConfig(120)

	if cfg.Rate != rate.Limit(2.0) {
		t.Errorf("Rate = %v, want %v", cfg.Rate, rate.Limit(2.0))
	}
	if cfg.Burst != 120 {
		t.Errorf("Burst = %d, want %d", cfg.Burst, 120)
	}
}

// TestRateLimiter_AllowsWithinLimit はバースト以内のリクエストが
// 通過することを検証する。
func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(100),
		Burst:           10,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, newLimitedRequest("user-1"))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, rr.Code, http.StatusOK)
		}
	}
}

// TestRateLimiter_BlocksOverLimit はバースト超過時に429エンベロープと
// Retry-Afterヘッダーが返ることを検証する。
func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(0.1),
		Burst:           2,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, newLimitedRequest("user-1"))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, rr.Code, http.StatusOK)
		}
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newLimitedRequest("user-1"))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Error {
		t.Error("expected error = true")
	}
	if body.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status_code = %d, want %d", body.StatusCode, http.StatusTooManyRequests)
	}
}

// TestRateLimiter_PerSubjectIsolation は別Subjectが互いの制限に
// 影響されないことを検証する。
func TestRateLimiter_PerSubjectIsolation(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(0.1),
		Burst:           1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-1のバーストを使い切る
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newLimitedRequest("user-1"))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newLimitedRequest("user-1"))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("user-1 second request: status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}

	// user-2は影響を受けない
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newLimitedRequest("user-2"))
	if rr.Code != http.StatusOK {
		t.Errorf("user-2: status = %d, want %d", rr.Code, http.StatusOK)
	}

	if rl.LimiterCount() != 2 {
		t.Errorf("LimiterCount = %d, want 2", rl.LimiterCount())
	}
}

// TestRateLimiter_MissingSubject はSubject未注入のリクエストが
// 401になることを検証する。
func TestRateLimiter_MissingSubject(t *testing.T) {
	rl := NewRateLimiter(NewRateLimiterConfig(120))
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// TestRateLimiter_Cleanup は期限切れエントリが削除されることを検証する。
func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(1),
		Burst:           1,
		CleanupInterval: 10 * time.Millisecond,
	})
	defer rl.Stop()

	rl.getOrCreateLimiter("user-1")
	if rl.LimiterCount() != 1 {
		t.Fatalf("LimiterCount = %d, want 1", rl.LimiterCount())
	}

	// TTL（CleanupInterval×2）経過後のクリーンアップを待つ
	deadline := time.Now().Add(time.Second)
	for rl.LimiterCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if rl.LimiterCount() != 0 {
		t.Errorf("LimiterCount = %d, want 0 after cleanup", rl.LimiterCount())
	}
}
