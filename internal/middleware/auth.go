// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/stash/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// subjectContextKey はリクエストコンテキストに検証済みSubjectを格納するためのキー。
var subjectContextKey = contextKey("subject")

// accessTokenContextKey はリクエストコンテキストに生のアクセストークンを格納するためのキー。
var accessTokenContextKey = contextKey("access_token")

// SubjectResolver はベアラートークンの検証に必要なインターフェース。
// identity.Serviceの部分集合として定義する。
type SubjectResolver interface {
	ResolveSubject(ctx context.Context, bearerToken string) (*model.Subject, error)
}

// BearerToken はAuthorizationヘッダーからベアラートークンを取り出す。
// ヘッダーの欠落や形式不正の場合はfalseを返す。
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// NewAuthMiddleware はベアラートークンをプロバイダーで検証し、
// 検証済みSubjectをリクエストコンテキストに注入するミドルウェアを返す。
// トークンの欠落・不正には401の統一エンベロープを返す。
func NewAuthMiddleware(resolver SubjectResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				WriteErrorResponse(w, model.NewUnauthenticatedError())
				return
			}

			subject, err := resolver.ResolveSubject(r.Context(), token)
			if err != nil {
				var apiErr *model.APIError
				if errors.As(err, &apiErr) {
					WriteErrorResponse(w, apiErr)
					return
				}
				WriteErrorResponse(w, model.NewUnauthenticatedError())
				return
			}

			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			ctx = context.WithValue(ctx, accessTokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext はリクエストコンテキストから検証済みSubjectを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func SubjectFromContext(ctx context.Context) (*model.Subject, error) {
	subject, ok := ctx.Value(subjectContextKey).(*model.Subject)
	if !ok || subject == nil {
		return nil, fmt.Errorf("subject not found in context")
	}
	return subject, nil
}

// SubjectIDFromContext はリクエストコンテキストからSubjectのIDを取得する。
func SubjectIDFromContext(ctx context.Context) (string, error) {
	subject, err := SubjectFromContext(ctx)
	if err != nil {
		return "", err
	}
	return subject.ID, nil
}

// AccessTokenFromContext はリクエストコンテキストから生のアクセストークンを取得する。
func AccessTokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(accessTokenContextKey).(string)
	if !ok || token == "" {
		return "", fmt.Errorf("access token not found in context")
	}
	return token, nil
}

// ContextWithSubject はコンテキストにSubjectとトークンを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSubject(ctx context.Context, subject *model.Subject, token string) context.Context {
	ctx = context.WithValue(ctx, subjectContextKey, subject)
	return context.WithValue(ctx, accessTokenContextKey, token)
}
