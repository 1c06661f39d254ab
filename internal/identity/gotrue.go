package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GoTrueConfig はGoTrue互換認証プロバイダーの設定。
type GoTrueConfig struct {
	// BaseURL はプロバイダーのベースURL（例: "https://xyz.supabase.co/auth/v1"）。
	BaseURL string
	// APIKey は全リクエストのapikeyヘッダーに付与するキー。
	APIKey string

	// テスト用にオーバーライド可能なHTTPクライアント
	HTTPClient *http.Client
}

// GoTrueProvider はGoTrue互換API（Supabase Auth等）による認証を提供する。
type GoTrueProvider struct {
	config GoTrueConfig
	client *http.Client
}

// NewGoTrueProvider はGoTrueProviderを生成する。
func NewGoTrueProvider(config GoTrueConfig) *GoTrueProvider {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoTrueProvider{config: config, client: client}
}

// gotrueUser はGoTrueのユーザー表現。
type gotrueUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

// gotrueSessionResponse はsignup/tokenエンドポイントのレスポンス。
type gotrueSessionResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        gotrueUser `json:"user"`
}

// gotrueErrorResponse はGoTrueのエラーレスポンス。
// バージョンによりフィールド名が異なるため両方を受ける。
type gotrueErrorResponse struct {
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

// SignUp は新規ユーザーを登録し、セッションを発行する。
func (p *GoTrueProvider) SignUp(ctx context.Context, email, password, fullName string) (*ProviderSession, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data": map[string]any{
			"full_name": fullName,
		},
	}

	var resp gotrueSessionResponse
	if err := p.post(ctx, "/signup", "", payload, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken == "" || resp.User.ID == "" {
		return nil, &ProviderError{StatusCode: http.StatusBadRequest, Message: "signup response did not include a session"}
	}

	return toProviderSession(&resp), nil
}

// SignInWithPassword はメールアドレスとパスワードでログインする。
func (p *GoTrueProvider) SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}

	var resp gotrueSessionResponse
	if err := p.post(ctx, "/token?grant_type=password", "", payload, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken == "" || resp.User.ID == "" {
		return nil, &ProviderError{StatusCode: http.StatusBadRequest, Message: "token response did not include a session"}
	}

	return toProviderSession(&resp), nil
}

// GetUser はアクセストークンからユーザー情報を取得する。
func (p *GoTrueProvider) GetUser(ctx context.Context, accessToken string) (*ProviderUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	p.setHeaders(req, accessToken)

	var user gotrueUser
	if err := p.do(req, &user); err != nil {
		return nil, err
	}

	if user.ID == "" {
		return nil, &ProviderError{StatusCode: http.StatusUnauthorized, Message: "user response did not include an id"}
	}

	u := toProviderUser(&user)
	return &u, nil
}

// SignOut はアクセストークンに紐づくセッションを無効化する。
func (p *GoTrueProvider) SignOut(ctx context.Context, accessToken string) error {
	return p.post(ctx, "/logout", accessToken, map[string]any{}, nil)
}

// post はJSONボディ付きPOSTリクエストを送信する。
func (p *GoTrueProvider) post(ctx context.Context, path, accessToken string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.setHeaders(req, accessToken)

	return p.do(req, out)
}

// do はリクエストを実行し、レスポンスをoutにデコードする。
// 非2xxレスポンスはProviderErrorとして返す。
func (p *GoTrueProvider) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    parseErrorMessage(body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse provider response: %w", err)
	}

	return nil
}

// setHeaders はapikeyヘッダーとAuthorizationヘッダーを設定する。
// accessTokenが空の場合はAPIキー自体をベアラーとして送る。
func (p *GoTrueProvider) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("apikey", p.config.APIKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}
}

// parseErrorMessage はエラーレスポンスボディからメッセージを抽出する。
func parseErrorMessage(body []byte) string {
	var errResp gotrueErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Msg != "" {
			return errResp.Msg
		}
		if errResp.ErrorDescription != "" {
			return errResp.ErrorDescription
		}
	}
	return string(body)
}

// toProviderSession はGoTrueレスポンスをProviderSessionに変換する。
func toProviderSession(resp *gotrueSessionResponse) *ProviderSession {
	return &ProviderSession{
		AccessToken: resp.AccessToken,
		User:        toProviderUser(&resp.User),
	}
}

// toProviderUser はGoTrueユーザーをProviderUserに変換する。
func toProviderUser(u *gotrueUser) ProviderUser {
	return ProviderUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.UserMetadata.FullName,
		CreatedAt: u.CreatedAt,
	}
}

// compile-time interface check
var _ Provider = (*GoTrueProvider)(nil)
