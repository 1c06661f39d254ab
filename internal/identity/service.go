package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"

	"github.com/hitoshi/stash/internal/model"
)

// Service は外部プロバイダーへの検証プロキシとして認証を提供する。
// ローカルにユーザー・セッションを一切持たないため、プロバイダー側の
// 失効が即座に反映される（キャッシュの鮮度を考慮する必要がない）。
type Service struct {
	provider Provider
}

// NewService はServiceを生成する。
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Register は新規ユーザーを登録し、セッションと検証済みSubjectを返す。
// メールアドレスの形式とパスワードの非空のみをローカルで検証し、
// それ以上のポリシー（重複、強度）はプロバイダーに委ねる。
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*model.Session, *model.Subject, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, model.NewValidationFailedError("メールアドレスの形式が正しくありません")
	}
	if password == "" {
		return nil, nil, model.NewValidationFailedError("パスワードは必須です")
	}

	session, err := s.provider.SignUp(ctx, email, password, fullName)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Definitive() {
			return nil, nil, model.NewRegistrationFailedError(pe.Message)
		}
		slog.Error("provider signup failed", slog.String("error", err.Error()))
		return nil, nil, model.NewProviderUnavailableError()
	}

	slog.Info("user registered",
		slog.String("subject_id", session.User.ID),
		slog.String("email", session.User.Email),
	)

	return toSession(session), toSubject(&session.User), nil
}

// Login はメールアドレスとパスワードでログインする。
// メールアドレス不明とパスワード不一致はどちらもInvalidCredentialsとなり、
// エラー表面から区別できない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, *model.Subject, error) {
	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Definitive() {
			return nil, nil, model.NewInvalidCredentialsError()
		}
		slog.Error("provider sign-in failed", slog.String("error", err.Error()))
		return nil, nil, model.NewProviderUnavailableError()
	}

	return toSession(session), toSubject(&session.User), nil
}

// ResolveSubject はベアラートークンを検証済みSubjectに解決する。
// 保護された全操作が通過する唯一のゲートであり、呼び出しごとに
// プロバイダーへ再検証する。
func (s *Service) ResolveSubject(ctx context.Context, bearerToken string) (*model.Subject, error) {
	if bearerToken == "" {
		return nil, model.NewUnauthenticatedError()
	}

	user, err := s.provider.GetUser(ctx, bearerToken)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Definitive() {
			return nil, model.NewUnauthenticatedError()
		}
		slog.Error("provider token verification failed", slog.String("error", err.Error()))
		return nil, model.NewProviderUnavailableError()
	}

	return toSubject(user), nil
}

// Logout はセッションの無効化をプロバイダーに依頼する。
// プロバイダーが権威であり、失敗はログに記録した上で呼び出し元に返す。
func (s *Service) Logout(ctx context.Context, bearerToken string) error {
	if bearerToken == "" {
		return model.NewUnauthenticatedError()
	}

	if err := s.provider.SignOut(ctx, bearerToken); err != nil {
		slog.Warn("provider sign-out failed", slog.String("error", err.Error()))

		var pe *ProviderError
		if errors.As(err, &pe) && pe.Definitive() {
			return model.NewUnauthenticatedError()
		}
		return model.NewProviderUnavailableError()
	}

	slog.Info("user logged out")
	return nil
}

// toSession はProviderSessionをドメインのSessionに変換する。
func toSession(s *ProviderSession) *model.Session {
	return &model.Session{AccessToken: s.AccessToken}
}

// toSubject はProviderUserをドメインのSubjectに変換する。
func toSubject(u *ProviderUser) *model.Subject {
	return &model.Subject{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}
