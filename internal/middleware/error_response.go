package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/stash/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// HTTPステータスコードをボディにも重複して含める。
type ErrorResponseBody struct {
	Error      bool   `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// WriteErrorResponse は統一エラーエンベロープでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:      true,
		Message:    apiErr.Message,
		StatusCode: apiErr.StatusCode,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, &model.APIError{
		Code:       model.ErrCodeInternal,
		Message:    "内部エラーが発生しました。しばらく待ってから再度お試しください。",
		StatusCode: http.StatusInternalServerError,
	})
}
