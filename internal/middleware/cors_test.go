package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestCORSMiddleware_Wildcard はワイルドカードオリジンのヘッダーを検証する。
func TestCORSMiddleware_Wildcard(t *testing.T) {
	handler := NewCORSMiddleware("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if origin := rr.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Allow-Origin = %q, want %q", origin, "*")
	}
	if methods := rr.Header().Get("Access-Control-Allow-Methods"); methods != "GET, POST, PUT, DELETE, OPTIONS" {
		t.Errorf("Allow-Methods = %q", methods)
	}
	// ワイルドカードとcredentialsは共存できない
	if cred := rr.Header().Get("Access-Control-Allow-Credentials"); cred != "" {
		t.Errorf("Allow-Credentials = %q, want empty for wildcard origin", cred)
	}
}

// TestCORSMiddleware_SpecificOrigin は特定オリジン指定時に
// credentialsが許可されることを検証する。
func TestCORSMiddleware_SpecificOrigin(t *testing.T) {
	handler := NewCORSMiddleware("https://app.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if origin := rr.Header().Get("Access-Control-Allow-Origin"); origin != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q, want %q", origin, "https://app.example.com")
	}
	if cred := rr.Header().Get("Access-Control-Allow-Credentials"); cred != "true" {
		t.Errorf("Allow-Credentials = %q, want %q", cred, "true")
	}
}

// TestCORSMiddleware_Preflight はOPTIONSプリフライトが204で
// 打ち切られることを検証する。
func TestCORSMiddleware_Preflight(t *testing.T) {
	nextCalled := false
	handler := NewCORSMiddleware("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/data", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if nextCalled {
		t.Error("expected next handler not to be called for preflight")
	}
}
