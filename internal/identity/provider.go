// Package identity は外部認証プロバイダーによる本人確認を提供する。
package identity

import (
	"context"
	"fmt"
	"time"
)

// ProviderUser はプロバイダーが保持するユーザー情報を表す。
type ProviderUser struct {
	ID        string
	Email     string
	FullName  string
	CreatedAt time.Time
}

// ProviderSession はプロバイダーが発行したセッションとユーザー情報の組。
type ProviderSession struct {
	AccessToken string
	User        ProviderUser
}

// Provider は外部認証プロバイダーのインターフェース。
// このサービスはユーザー・セッションを一切永続化せず、
// すべての検証をプロバイダーに委ねる。
type Provider interface {
	// SignUp は新規ユーザーを登録し、セッションを発行する。
	SignUp(ctx context.Context, email, password, fullName string) (*ProviderSession, error)
	// SignInWithPassword はメールアドレスとパスワードでログインする。
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)
	// GetUser はアクセストークンからユーザー情報を取得する。
	// 呼び出しごとにプロバイダーへ問い合わせ、ローカルキャッシュは持たない。
	GetUser(ctx context.Context, accessToken string) (*ProviderUser, error)
	// SignOut はアクセストークンに紐づくセッションを無効化する。
	SignOut(ctx context.Context, accessToken string) error
}

// ProviderError はプロバイダーがHTTPエラーを返した場合のエラー。
// 上流のステータスコードを保持し、確定的な拒否と一時的な障害を
// 呼び出し側で区別できるようにする。
type ProviderError struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// Definitive はプロバイダーがリクエストを確定的に拒否した場合にtrueを返す。
// 4xxは再試行しても結果が変わらない拒否、それ以外は一時的な障害として扱う。
func (e *ProviderError) Definitive() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
