// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/stash/internal/model"
)

// RecordRepository はコンテンツレコードの永続化インターフェース。
// 読み取り・更新・削除の述語は必ず (id, owner_id) の組で絞り込む。
// 所有者チェックを後付けの別ステップにすると他ユーザーのレコードの
// 存在が漏れる余地が生まれるため、クエリ自体に含める。
type RecordRepository interface {
	// Create はレコードを作成する。IDとタイムスタンプはストレージ層が割り当てる。
	Create(ctx context.Context, ownerID, title, content string, metadata map[string]any) (*model.Record, error)

	// ListByOwner は所有者のレコード一覧をcreated_at降順（同値は挿入順の逆順）で返す。
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.Record, error)

	// FindByIDAndOwner はIDと所有者の組でレコードを取得する。
	// 存在しない場合、および所有者が異なる場合はnilを返す。
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Record, error)

	// Update は指定フィールドのみを部分更新し、更新後のレコードを返す。
	// 対象行が存在しない場合（所有者違いを含む）はnilを返す。
	// updated_atは成功時のみ更新される。
	Update(ctx context.Context, id, ownerID string, update model.RecordUpdate) (*model.Record, error)

	// Delete はIDと所有者の組でレコードを削除する。
	// 削除された場合はtrue、対象行が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}
