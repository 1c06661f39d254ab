// Package record は所有者スコープ付きのコンテンツレコードCRUDを提供する。
package record

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hitoshi/stash/internal/model"
	"github.com/hitoshi/stash/internal/repository"
)

const (
	// DefaultLimit は一覧取得のデフォルト件数。
	DefaultLimit = 100
	// MaxLimit は一覧取得の最大件数。
	MaxLimit = 1000
)

// MetricsRecorder はレコード操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordCreated()
	RecordUpdated()
	RecordDeleted()
}

// noopMetrics はメトリクス未設定時のダミー実装。
type noopMetrics struct{}

func (noopMetrics) RecordCreated() {}
func (noopMetrics) RecordUpdated() {}
func (noopMetrics) RecordDeleted() {}

// Service はレコードに関するビジネスロジックを提供する。
// すべての操作は認証済みSubjectのIDでスコープされ、他人のレコードは
// 存在しないものとして扱う。
type Service struct {
	repo    repository.RecordRepository
	metrics MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(repo repository.RecordRepository, metrics MetricsRecorder) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{repo: repo, metrics: metrics}
}

// Create は認証済みSubjectを所有者とするレコードを作成する。
// タイトルが空の場合はストレージに到達する前に拒否する。
func (s *Service) Create(ctx context.Context, ownerID, title, content string, metadata map[string]any) (*model.Record, error) {
	if strings.TrimSpace(title) == "" {
		return nil, model.NewValidationFailedError("タイトルは必須です")
	}

	created, err := s.repo.Create(ctx, ownerID, title, content, metadata)
	if err != nil {
		slog.Error("failed to create record",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStorageWriteFailedError()
	}

	s.metrics.RecordCreated()
	return created, nil
}

// List は所有者のレコード一覧をcreated_at降順で返す。
// limitとoffsetは範囲外の場合、暗黙にクランプせず明示的に拒否する。
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]*model.Record, error) {
	if limit < 1 || limit > MaxLimit {
		return nil, model.NewQueryRangeError("limitは1以上1000以下で指定してください")
	}
	if offset < 0 {
		return nil, model.NewQueryRangeError("offsetは0以上で指定してください")
	}

	records, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		slog.Error("failed to list records",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStorageReadFailedError()
	}

	if records == nil {
		records = []*model.Record{}
	}
	return records, nil
}

// Get はIDと所有者の組でレコードを取得する。
// 存在しない場合と他人の所有物である場合はどちらもNotFoundになる。
func (s *Service) Get(ctx context.Context, ownerID, recordID string) (*model.Record, error) {
	found, err := s.repo.FindByIDAndOwner(ctx, recordID, ownerID)
	if err != nil {
		slog.Error("failed to find record",
			slog.String("owner_id", ownerID),
			slog.String("record_id", recordID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStorageReadFailedError()
	}
	if found == nil {
		return nil, model.NewRecordNotFoundError(recordID)
	}

	return found, nil
}

// Update は指定フィールドのみを部分更新する。
// 更新フィールドが1つもない場合はストレージに到達する前に拒否する。
// 対象行なし（所有者違いを含む）はNotFoundになる。
func (s *Service) Update(ctx context.Context, ownerID, recordID string, update model.RecordUpdate) (*model.Record, error) {
	if update.IsEmpty() {
		return nil, model.NewNoFieldsToUpdateError()
	}

	updated, err := s.repo.Update(ctx, recordID, ownerID, update)
	if err != nil {
		slog.Error("failed to update record",
			slog.String("owner_id", ownerID),
			slog.String("record_id", recordID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStorageWriteFailedError()
	}
	if updated == nil {
		return nil, model.NewRecordNotFoundError(recordID)
	}

	s.metrics.RecordUpdated()
	return updated, nil
}

// Delete はIDと所有者の組でレコードを削除する。
// 対象行なし（所有者違いを含む）はNotFoundになる。
func (s *Service) Delete(ctx context.Context, ownerID, recordID string) error {
	deleted, err := s.repo.Delete(ctx, recordID, ownerID)
	if err != nil {
		slog.Error("failed to delete record",
			slog.String("owner_id", ownerID),
			slog.String("record_id", recordID),
			slog.String("error", err.Error()),
		)
		return model.NewStorageWriteFailedError()
	}
	if !deleted {
		return model.NewRecordNotFoundError(recordID)
	}

	s.metrics.RecordDeleted()
	return nil
}
