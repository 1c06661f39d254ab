// Package model はドメインモデルを定義する。
package model

import "time"

// Record はユーザーが所有するコンテンツレコードを表す。
// OwnerIDは作成時に認証済みSubjectのIDで固定され、以後変更されない。
type Record struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordUpdate は部分更新で変更するフィールドの集合を表す。
// nilのフィールドは変更しない。
type RecordUpdate struct {
	Title    *string
	Content  *string
	Metadata map[string]any
}

// IsEmpty は更新対象のフィールドが1つも指定されていない場合にtrueを返す。
func (u RecordUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Metadata == nil
}
