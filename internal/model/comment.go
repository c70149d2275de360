// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/google/uuid"
)

// Comment は記事へのコメントを表す。
// UserPublicIDがnilのコメントはゲスト投稿で、UserNameのみを持つ。
// ゲストコメントは所有者が存在しないため、変更・削除の所有権チェックは常に失敗する。
type Comment struct {
	PublicID        uuid.UUID
	UserPublicID    *uuid.UUID
	UserName        *string
	ArticlePublicID uuid.UUID
	Body            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewComment はコメント作成の入力を表す。
// UserNameはゲスト投稿専用で、ログインユーザーのIDはアクセストークンから取り出す。
type NewComment struct {
	ArticlePublicID uuid.UUID
	Body            string
	UserName        *string
}

// Validate は作成入力を検証する。
func (c NewComment) Validate() *APIError {
	if len(c.Body) < 1 {
		return NewValidationError("コメント本文は1文字以上で指定してください。")
	}
	return nil
}

// UpdateComment はコメント更新の入力を表す。nilフィールドは変更しない。
type UpdateComment struct {
	Body *string
}

// Validate は更新入力を検証する。
func (c UpdateComment) Validate() *APIError {
	if c.Body != nil && len(*c.Body) < 1 {
		return NewValidationError("コメント本文は1文字以上で指定してください。")
	}
	return nil
}

// CommentFilter はコメント一覧の絞り込み条件を表す。
type CommentFilter struct {
	ArticlePublicID *uuid.UUID
}
