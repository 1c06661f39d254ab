// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// HTTP境界でエンベロープ（error, message, status_code）に変換される。
type APIError struct {
	Code       string // エラーコード
	Message    string // エラーメッセージ
	StatusCode int    // HTTPステータスコード
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeRegistrationFailed  = "REGISTRATION_FAILED"
	ErrCodeRecordNotFound      = "RECORD_NOT_FOUND"
	ErrCodeNoFieldsToUpdate    = "NO_FIELDS_TO_UPDATE"
	ErrCodeStorageWriteFailed  = "STORAGE_WRITE_FAILED"
	ErrCodeStorageReadFailed   = "STORAGE_READ_FAILED"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewValidationFailedError は入力値の形式不正エラーを生成する。
func NewValidationFailedError(reason string) *APIError {
	return &APIError{
		Code:       ErrCodeValidationFailed,
		Message:    fmt.Sprintf("入力値が不正です: %s", reason),
		StatusCode: 400,
	}
}

// NewQueryRangeError は一覧取得パラメータの範囲外エラーを生成する。
// 範囲外の値は暗黙にクランプせず、422で明示的に拒否する。
func NewQueryRangeError(reason string) *APIError {
	return &APIError{
		Code:       ErrCodeValidationFailed,
		Message:    fmt.Sprintf("クエリパラメータが範囲外です: %s", reason),
		StatusCode: 422,
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
// トークンの欠落・不正・期限切れをまとめて扱う。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:       ErrCodeUnauthenticated,
		Message:    "認証が必要です。有効なアクセストークンを指定してください。",
		StatusCode: 401,
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレス不明とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:       ErrCodeInvalidCredentials,
		Message:    "メールアドレスまたはパスワードが正しくありません。",
		StatusCode: 401,
	}
}

// NewRegistrationFailedError はユーザー登録失敗エラーを生成する。
func NewRegistrationFailedError(reason string) *APIError {
	return &APIError{
		Code:       ErrCodeRegistrationFailed,
		Message:    fmt.Sprintf("ユーザー登録に失敗しました: %s", reason),
		StatusCode: 400,
	}
}

// NewRecordNotFoundError はレコード未検出エラーを生成する。
// 存在しない場合と他ユーザーの所有物である場合を意図的に区別しない。
func NewRecordNotFoundError(recordID string) *APIError {
	return &APIError{
		Code:       ErrCodeRecordNotFound,
		Message:    fmt.Sprintf("指定されたレコードが見つかりません: %s", recordID),
		StatusCode: 404,
	}
}

// NewNoFieldsToUpdateError は更新フィールド未指定エラーを生成する。
func NewNoFieldsToUpdateError() *APIError {
	return &APIError{
		Code:       ErrCodeNoFieldsToUpdate,
		Message:    "更新するフィールドが指定されていません。",
		StatusCode: 400,
	}
}

// NewStorageWriteFailedError はストレージ書き込み失敗エラーを生成する。
func NewStorageWriteFailedError() *APIError {
	return &APIError{
		Code:       ErrCodeStorageWriteFailed,
		Message:    "データの保存に失敗しました。しばらく待ってから再度お試しください。",
		StatusCode: 502,
	}
}

// NewStorageReadFailedError はストレージ読み取り失敗エラーを生成する。
func NewStorageReadFailedError() *APIError {
	return &APIError{
		Code:       ErrCodeStorageReadFailed,
		Message:    "データの取得に失敗しました。しばらく待ってから再度お試しください。",
		StatusCode: 502,
	}
}

// NewProviderUnavailableError は認証プロバイダーの一時的な障害エラーを生成する。
func NewProviderUnavailableError() *APIError {
	return &APIError{
		Code:       ErrCodeProviderUnavailable,
		Message:    "認証サービスに接続できません。しばらく待ってから再度お試しください。",
		StatusCode: 503,
	}
}
