// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus は記事の公開状態を表す。
type ArticleStatus string

const (
	// StatusDraft は下書き状態。
	StatusDraft ArticleStatus = "draft"
	// StatusPrivate は非公開状態。
	StatusPrivate ArticleStatus = "private"
	// StatusPublished は公開状態。
	StatusPublished ArticleStatus = "published"
	// StatusDeleted は論理削除状態。
	StatusDeleted ArticleStatus = "deleted"
)

// ParseArticleStatus は文字列をArticleStatusに変換する。
func ParseArticleStatus(s string) (ArticleStatus, bool) {
	switch ArticleStatus(s) {
	case StatusDraft, StatusPrivate, StatusPublished, StatusDeleted:
		return ArticleStatus(s), true
	default:
		return "", false
	}
}

// Article はブログ記事を表す。
// UserPublicIDが所有者で、変更・削除は所有者のみが行える。
type Article struct {
	PublicID         uuid.UUID
	UserPublicID     uuid.UUID
	Title            string
	Body             string
	Status           ArticleStatus
	CategoryPublicID *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewArticle は記事作成の入力を表す。
type NewArticle struct {
	Title            string
	Body             string
	Status           ArticleStatus
	CategoryPublicID *uuid.UUID
}

// Validate は作成入力を検証する。
func (a NewArticle) Validate() *APIError {
	if l := len([]rune(a.Title)); l < 1 || l > 85 {
		return NewValidationError("タイトルは1〜85文字で指定してください。")
	}
	if len(a.Body) < 1 {
		return NewValidationError("本文は1文字以上で指定してください。")
	}
	if _, ok := ParseArticleStatus(string(a.Status)); !ok {
		return NewValidationError("記事のステータスが不正です。")
	}
	return nil
}

// UpdateArticle は記事更新の入力を表す。nilフィールドは変更しない。
type UpdateArticle struct {
	Title            *string
	Body             *string
	Status           *ArticleStatus
	CategoryPublicID *uuid.UUID
}

// Validate は更新入力を検証する。
func (a UpdateArticle) Validate() *APIError {
	if a.Title != nil {
		if l := len([]rune(*a.Title)); l < 1 || l > 85 {
			return NewValidationError("タイトルは1〜85文字で指定してください。")
		}
	}
	if a.Body != nil && len(*a.Body) < 1 {
		return NewValidationError("本文は1文字以上で指定してください。")
	}
	if a.Status != nil {
		if _, ok := ParseArticleStatus(string(*a.Status)); !ok {
			return NewValidationError("記事のステータスが不正です。")
		}
	}
	return nil
}

// ArticleFilter は記事一覧の絞り込み条件を表す。
type ArticleFilter struct {
	UserPublicID     *uuid.UUID
	Status           *ArticleStatus
	CategoryPublicID *uuid.UUID
}
