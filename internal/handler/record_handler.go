package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/stash/internal/middleware"
	"github.com/hitoshi/stash/internal/model"
	"github.com/hitoshi/stash/internal/record"
)

// RecordServiceInterface はレコードハンドラーが必要とするサービスインターフェース。
type RecordServiceInterface interface {
	Create(ctx context.Context, ownerID, title, content string, metadata map[string]any) (*model.Record, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*model.Record, error)
	Get(ctx context.Context, ownerID, recordID string) (*model.Record, error)
	Update(ctx context.Context, ownerID, recordID string, update model.RecordUpdate) (*model.Record, error)
	Delete(ctx context.Context, ownerID, recordID string) error
}

// RecordHandler はレコード管理のHTTPハンドラー。
type RecordHandler struct {
	service RecordServiceInterface
}

// NewRecordHandler はRecordHandlerを生成する。
func NewRecordHandler(service RecordServiceInterface) *RecordHandler {
	return &RecordHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// createRecordRequest はレコード作成リクエストのボディ。
type createRecordRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// updateRecordRequest はレコード部分更新リクエストのボディ。
// nilのフィールドは変更しない。
type updateRecordRequest struct {
	Title    *string        `json:"title"`
	Content  *string        `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// recordResponse はレコードのAPIレスポンス。
type recordResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	UserID    string         `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// toRecordResponse はドメインのRecordをAPIレスポンス型に変換する。
// タイムスタンプはUTCに正規化する。
func toRecordResponse(rec *model.Record) recordResponse {
	return recordResponse{
		ID:        rec.ID,
		Title:     rec.Title,
		Content:   rec.Content,
		Metadata:  rec.Metadata,
		UserID:    rec.OwnerID,
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}

// Create はレコード作成を処理する。
// POST /data
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.SubjectIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthenticatedError())
		return
	}

	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewValidationFailedError("リクエストボディの解析に失敗しました"))
		return
	}

	created, err := h.service.Create(r.Context(), subjectID, req.Title, req.Content, req.Metadata)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(created))
}

// List は所有レコードの一覧を取得する。
// GET /data?limit=100&offset=0
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.SubjectIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthenticatedError())
		return
	}

	limit, err := parseQueryInt(r, "limit", record.DefaultLimit)
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewQueryRangeError("limitには整数を指定してください"))
		return
	}
	offset, err := parseQueryInt(r, "offset", 0)
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewQueryRangeError("offsetには整数を指定してください"))
		return
	}

	records, err := h.service.List(r.Context(), subjectID, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]recordResponse, len(records))
	for i, rec := range records {
		responses[i] = toRecordResponse(rec)
	}

	writeJSON(w, http.StatusOK, responses)
}

// Get はレコード詳細を取得する。
// GET /data/{id}
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.SubjectIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthenticatedError())
		return
	}

	recordID := chi.URLParam(r, "id")

	found, err := h.service.Get(r.Context(), subjectID, recordID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(found))
}

// Update はレコードの部分更新を処理する。
// PUT /data/{id}
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.SubjectIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthenticatedError())
		return
	}

	recordID := chi.URLParam(r, "id")

	var req updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewValidationFailedError("リクエストボディの解析に失敗しました"))
		return
	}

	updated, err := h.service.Update(r.Context(), subjectID, recordID, model.RecordUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(updated))
}

// Delete はレコード削除を処理する。
// DELETE /data/{id}
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.SubjectIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthenticatedError())
		return
	}

	recordID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), subjectID, recordID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "レコードを削除しました。",
	})
}

// parseQueryInt はクエリパラメータを整数として解析する。
// パラメータが存在しない場合はデフォルト値を返す。
func parseQueryInt(r *http.Request, key string, defaultVal int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}
