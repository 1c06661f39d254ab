// Package model はドメインモデルを定義する。
package model

import "time"

// Subject は外部認証プロバイダーで検証済みの利用者を表す。
// このサービス自身はユーザーレコードを永続化せず、プロバイダーの応答から構築する。
type Subject struct {
	ID        string
	Email     string
	FullName  string
	CreatedAt time.Time
}

// Session はSubjectに紐づくベアラー認証情報を表す。
// アクセストークンはプロバイダーが発行する不透明な文字列であり、
// 有効期限の解釈はプロバイダーに委ねる。
type Session struct {
	AccessToken string
}
