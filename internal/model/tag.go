// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/google/uuid"
)

// Tag は記事に付与するタグを表す。名前はシステム全体で一意。
type Tag struct {
	PublicID  uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTag はタグ作成の入力を表す。
type NewTag struct {
	Name string
}

// Validate は作成入力を検証する。
func (t NewTag) Validate() *APIError {
	if l := len([]rune(t.Name)); l < 1 || l > 15 {
		return NewValidationError("タグ名は1〜15文字で指定してください。")
	}
	return nil
}

// TagFilter はタグ一覧の絞り込み条件を表す。
type TagFilter struct {
	Name *string
}
