package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/stash/internal/model"
)

// --- モック ---

type mockResolver struct {
	resolveFn func(ctx context.Context, bearerToken string) (*model.Subject, error)
}

func (m *mockResolver) ResolveSubject(ctx context.Context, bearerToken string) (*model.Subject, error) {
	return m.resolveFn(ctx, bearerToken)
}

// decodeErrorBody はレスポンスから統一エラーエンベロープを取り出す。
func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v\nraw: %s", err, rr.Body.String())
	}
	return body
}

// --- テスト ---

// TestBearerToken はAuthorizationヘッダーの解析を検証する。
func TestBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{"valid", "Bearer abc123", "abc123", true},
		{"lowercase_scheme", "bearer abc123", "abc123", true},
		{"missing", "", "", false},
		{"no_scheme", "abc123", "", false},
		{"empty_token", "Bearer ", "", false},
		{"whitespace_token", "Bearer    ", "", false},
		{"wrong_scheme", "Basic abc123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/data", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			token, ok := BearerToken(r)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

// TestAuthMiddleware_ValidToken は検証済みSubjectがコンテキストに
// 注入されることを検証する。
func TestAuthMiddleware_ValidToken(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, bearerToken string) (*model.Subject, error) {
			if bearerToken != "valid-token" {
				t.Errorf("bearerToken = %q, want %q", bearerToken, "valid-token")
			}
			return &model.Subject{ID: "user-1", Email: "alice@example.com"}, nil
		},
	}

	var gotSubjectID, gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubjectID, _ = SubjectIDFromContext(r.Context())
		gotToken, _ = AccessTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := NewAuthMiddleware(resolver)(next)

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if gotSubjectID != "user-1" {
		t.Errorf("subject ID in context = %q, want %q", gotSubjectID, "user-1")
	}
	if gotToken != "valid-token" {
		t.Errorf("access token in context = %q, want %q", gotToken, "valid-token")
	}
}

// TestAuthMiddleware_MissingToken はトークン欠落時に401エンベロープが
// 返ることを検証する。
func TestAuthMiddleware_MissingToken(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, bearerToken string) (*model.Subject, error) {
			t.Fatal("resolver should not be called without a token")
			return nil, nil
		},
	}

	handler := NewAuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	body := decodeErrorBody(t, rr)
	if !body.Error {
		t.Error("expected error = true in envelope")
	}
	if body.StatusCode != http.StatusUnauthorized {
		t.Errorf("status_code in body = %d, want %d", body.StatusCode, http.StatusUnauthorized)
	}
}

// TestAuthMiddleware_RejectedToken はリゾルバーのAPIErrorがそのまま
// エンベロープに変換されることを検証する。
func TestAuthMiddleware_RejectedToken(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, bearerToken string) (*model.Subject, error) {
			return nil, model.NewUnauthenticatedError()
		},
	}

	handler := NewAuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// TestAuthMiddleware_ProviderDown はプロバイダー障害時に503が
// 伝播することを検証する。
func TestAuthMiddleware_ProviderDown(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, bearerToken string) (*model.Subject, error) {
			return nil, model.NewProviderUnavailableError()
		},
	}

	handler := NewAuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

// TestSubjectFromContext_Missing はSubject未注入のコンテキストで
// エラーになることを検証する。
func TestSubjectFromContext_Missing(t *testing.T) {
	if _, err := SubjectFromContext(context.Background()); err == nil {
		t.Error("expected error for context without subject")
	}
	if _, err := SubjectIDFromContext(context.Background()); err == nil {
		t.Error("expected error for context without subject")
	}
	if _, err := AccessTokenFromContext(context.Background()); err == nil {
		t.Error("expected error for context without token")
	}
}

// TestContextWithSubject はテスト用コンテキスト注入ヘルパーを検証する。
func TestContextWithSubject(t *testing.T) {
	subject := &model.Subject{ID: "user-1"}
	ctx := ContextWithSubject(context.Background(), subject, "token-abc")

	got, err := SubjectFromContext(ctx)
	if err != nil {
		t.Fatalf("SubjectFromContext returned error: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID = %q, want %q", got.ID, "user-1")
	}

	token, err := AccessTokenFromContext(ctx)
	if err != nil {
		t.Fatalf("AccessTokenFromContext returned error: %v", err)
	}
	if token != "token-abc" {
		t.Errorf("token = %q, want %q", token, "token-abc")
	}
}
