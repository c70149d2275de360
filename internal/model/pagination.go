// Package model はドメインモデルを定義する。
package model

import "github.com/google/uuid"

// ページネーションの制約値
const (
	DefaultPerPage = 100
	MaxPerPage     = 100
)

// Pagination はカーソルベースページネーションの入力を表す。
// Cursorは直前ページ最終行の公開IDで、ゼロ値なら先頭から取得する。
type Pagination struct {
	Cursor  *uuid.UUID
	PerPage int
}

// Validate はページネーション入力を検証する。
func (p Pagination) Validate() *APIError {
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		return NewValidationError("per_pageは1〜100で指定してください。")
	}
	return nil
}

// DefaultPagination はデフォルト値のページネーションを返す。
func DefaultPagination() Pagination {
	return Pagination{PerPage: DefaultPerPage}
}
