package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hitoshi/stash/internal/model"
)

// recordColumns はrecordsテーブルのSELECT対象カラム。
const recordColumns = "id, owner_id, title, content, metadata, created_at, updated_at"

// PostgresRecordRepo はPostgreSQLを使用したレコードリポジトリ。
type PostgresRecordRepo struct {
	db *sql.DB
}

// NewPostgresRecordRepo はPostgresRecordRepoを生成する。
func NewPostgresRecordRepo(db *sql.DB) *PostgresRecordRepo {
	return &PostgresRecordRepo{db: db}
}

// Create はレコードを作成する。IDとタイムスタンプはストレージ層が割り当てる。
// created_atとupdated_atは同一ステートメントのnow()で設定されるため、
// 作成直後は両者が一致する。
func (r *PostgresRecordRepo) Create(ctx context.Context, ownerID, title, content string, metadata map[string]any) (*model.Record, error) {
	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO records (id, owner_id, title, content, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+recordColumns,
		uuid.New().String(), ownerID, title, content, metadataJSON,
	)

	record, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	return record, nil
}

// ListByOwner は所有者のレコード一覧をcreated_at降順で返す。
// created_atが同値の場合はseq（挿入順）の降順で並べる。
func (r *PostgresRecordRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+`
		 FROM records
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, seq DESC
		 LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*model.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// FindByIDAndOwner はIDと所有者の組でレコードを取得する。
// 存在しない場合、および所有者が異なる場合はnilを返す。
func (r *PostgresRecordRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find record: %w", err)
	}

	return record, nil
}

// Update は指定フィールドのみを部分更新し、更新後のレコードを返す。
// WHERE句は (id, owner_id) の組で絞り込むため、所有者が異なる場合は
// 対象行なしとしてnilを返す。
func (r *PostgresRecordRepo) Update(ctx context.Context, id, ownerID string, update model.RecordUpdate) (*model.Record, error) {
	setClauses := []string{}
	args := []any{}
	argIndex := 1

	if update.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argIndex))
		args = append(args, *update.Title)
		argIndex++
	}
	if update.Content != nil {
		setClauses = append(setClauses, fmt.Sprintf("content = $%d", argIndex))
		args = append(args, *update.Content)
		argIndex++
	}
	if update.Metadata != nil {
		metadataJSON, err := marshalMetadata(update.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("metadata = $%d", argIndex))
		args = append(args, metadataJSON)
		argIndex++
	}

	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(
		`UPDATE records SET %s WHERE id = $%d AND owner_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIndex, argIndex+1, recordColumns,
	)
	args = append(args, id, ownerID)

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	return record, nil
}

// Delete はIDと所有者の組でレコードを削除する。
// 削除された場合はtrue、対象行が存在しない場合はfalseを返す。
func (r *PostgresRecordRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord は1行をmodel.Recordに変換する。
func scanRecord(row rowScanner) (*model.Record, error) {
	record := &model.Record{}
	var metadataRaw []byte

	err := row.Scan(
		&record.ID, &record.OwnerID, &record.Title, &record.Content,
		&metadataRaw, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return record, nil
}

// marshalMetadata はメタデータをJSONB格納用のバイト列に変換する。
// nilの場合はNULLとして格納する。
func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	return json.Marshal(metadata)
}

// compile-time interface check
var _ RecordRepository = (*PostgresRecordRepo)(nil)
