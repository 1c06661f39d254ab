// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/stash/internal/middleware"
	"github.com/hitoshi/stash/internal/model"
)

// IdentityServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type IdentityServiceInterface interface {
	Register(ctx context.Context, email, password, fullName string) (*model.Session, *model.Subject, error)
	Login(ctx context.Context, email, password string) (*model.Session, *model.Subject, error)
	ResolveSubject(ctx context.Context, bearerToken string) (*model.Subject, error)
	Logout(ctx context.Context, bearerToken string) error
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service IdentityServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service IdentityServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// subjectResponse は検証済みユーザーのAPIレスポンス。
type subjectResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// authResponse は登録・ログイン成功時のレスポンス。
type authResponse struct {
	AccessToken string          `json:"access_token"`
	User        subjectResponse `json:"user"`
}

// toSubjectResponse はドメインのSubjectをAPIレスポンス型に変換する。
// タイムスタンプはUTCに正規化する。
func toSubjectResponse(subject *model.Subject) subjectResponse {
	return subjectResponse{
		ID:        subject.ID,
		Email:     subject.Email,
		FullName:  subject.FullName,
		CreatedAt: subject.CreatedAt.UTC(),
	}
}

// Register はユーザー登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewValidationFailedError("リクエストボディの解析に失敗しました"))
		return
	}

	session, subject, err := h.service.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken: session.AccessToken,
		User:        toSubjectResponse(subject),
	})
}

// Login はログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewValidationFailedError("リクエストボディの解析に失敗しました"))
		return
	}

	session, subject, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken: session.AccessToken,
		User:        toSubjectResponse(subject),
	})
}

// Logout はセッションの無効化をプロバイダーに依頼する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		middleware.WriteErrorResponse(w, model.NewUnauthenticatedError())
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "ログアウトしました。",
	})
}

// Me は現在の認証済みユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		middleware.WriteErrorResponse(w, model.NewUnauthenticatedError())
		return
	}

	subject, err := h.service.ResolveSubject(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubjectResponse(subject))
}
