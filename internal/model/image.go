// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/google/uuid"
)

// StorageType は画像の保存先種別を表す。現状はデータベース保存のみ。
type StorageType string

const (
	// StorageDatabase はbytea列へのデータベース保存。
	StorageDatabase StorageType = "database"
)

// Image は記事に添付された画像のメタデータを表す。
// 所有権は紐付く記事の所有者から導出される。
type Image struct {
	PublicID        uuid.UUID
	Name            string
	MimeType        string
	URL             *string
	StorageType     StorageType
	ArticlePublicID uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ImageData は画像本体のバイナリとMIMEタイプを表す。配信用。
type ImageData struct {
	MimeType string
	Data     []byte
}

// ImageWithOwner は画像と所有記事のオーナーIDを結合した読み出し結果。
// 所有権チェックのための1回のJOIN読み出しで使用する。
type ImageWithOwner struct {
	Image
	ArticleOwnerID uuid.UUID
}

// NewImage は画像登録の入力を表す。
type NewImage struct {
	Name            string
	MimeType        string
	Data            []byte
	URL             *string
	StorageType     StorageType
	ArticlePublicID uuid.UUID
}

// 画像バリデーションの制約値
const (
	MaxImageBytes = 5_000_000
)

// allowedImageMimeTypes は許可する画像MIMEタイプ。
var allowedImageMimeTypes = map[string]struct{}{
	"image/jpg":  {},
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Validate は登録入力を検証する。
func (i NewImage) Validate() *APIError {
	if l := len([]rune(i.Name)); l < 1 || l > 255 {
		return NewValidationError("画像名は1〜255文字で指定してください。")
	}
	if _, ok := allowedImageMimeTypes[i.MimeType]; !ok {
		return NewValidationError("対応していない画像形式です。jpeg, png, gif, webp のいずれかを指定してください。")
	}
	if len(i.Data) == 0 {
		return NewValidationError("画像データが空です。")
	}
	if len(i.Data) > MaxImageBytes {
		return NewValidationError("画像サイズは5MB以下にしてください。")
	}
	return nil
}

// ImageFilter は画像一覧の絞り込み条件を表す。
type ImageFilter struct {
	ArticlePublicID *uuid.UUID
}
