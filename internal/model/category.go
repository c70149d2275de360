// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/google/uuid"
)

// Category は記事のカテゴリを表す。名前はシステム全体で一意。
type Category struct {
	PublicID  uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory はカテゴリ作成の入力を表す。
type NewCategory struct {
	Name string
}

// Validate は作成入力を検証する。
func (c NewCategory) Validate() *APIError {
	if l := len([]rune(c.Name)); l < 1 || l > 20 {
		return NewValidationError("カテゴリ名は1〜20文字で指定してください。")
	}
	return nil
}

// UpdateCategory はカテゴリ更新の入力を表す。
type UpdateCategory struct {
	Name string
}

// Validate は更新入力を検証する。
func (c UpdateCategory) Validate() *APIError {
	if l := len([]rune(c.Name)); l < 1 || l > 20 {
		return NewValidationError("カテゴリ名は1〜20文字で指定してください。")
	}
	return nil
}
