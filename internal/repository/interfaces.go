// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
	"github.com/lib/pq"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByPublicID は指定公開IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.User, error)

	// FindByProviderSubject はproviderとprovider_user_idで既存ユーザーを検索する。
	// identitiesテーブルを経由して特定する。見つからない場合はnilを返す。
	FindByProviderSubject(ctx context.Context, provider, providerUserID string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// Update はユーザーの表示名を更新し、更新後のユーザーを返す。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, publicID uuid.UUID, name string) (*model.User, error)

	// UpdateLastLogin は最終ログイン日時を更新する。
	UpdateLastLogin(ctx context.Context, publicID uuid.UUID, at time.Time) error

	// DeleteByPublicID は指定公開IDのユーザーを削除する。
	// 関連するidentities、articlesはCASCADE削除され、コメントの所有者はNULLになる。
	DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error
}

// ArticleRepository は記事データの永続化インターフェース。
type ArticleRepository interface {
	// FindByPublicID は指定公開IDの記事を取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Article, error)

	// List はフィルタ条件に一致する記事一覧を返す。
	// created_at降順でカーソルベースページネーションを使用する。
	List(ctx context.Context, filter model.ArticleFilter, page model.Pagination) ([]*model.Article, error)

	// ListByTag は指定タグが付与された記事一覧を返す。
	ListByTag(ctx context.Context, tagPublicID uuid.UUID, page model.Pagination) ([]*model.Article, error)

	// Create は記事を作成する。
	Create(ctx context.Context, article *model.Article) error

	// Update は記事を上書き更新する。
	Update(ctx context.Context, article *model.Article) error

	// DeleteByPublicID は指定公開IDの記事を削除する。
	// 関連するarticle_tags、comments、imagesはCASCADE削除される。
	DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error

	// ReplaceTags は記事のタグ付けを同一トランザクションで置き換える。
	ReplaceTags(ctx context.Context, articlePublicID uuid.UUID, tagPublicIDs []uuid.UUID) error

	// ListTags は記事に付与されたタグ一覧を返す。
	ListTags(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Tag, error)
}

// CategoryRepository はカテゴリデータの永続化インターフェース。
type CategoryRepository interface {
	// FindByPublicID は指定公開IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Category, error)

	// List は全カテゴリを名前昇順で返す。
	List(ctx context.Context) ([]*model.Category, error)

	// Create はカテゴリを作成する。名前重複時はユニーク制約違反を返す。
	Create(ctx context.Context, category *model.Category) error

	// Update はカテゴリ名を更新する。
	Update(ctx context.Context, category *model.Category) error

	// DeleteByPublicID は指定公開IDのカテゴリを削除する。
	// 参照している記事のcategory_public_idはNULLになる。
	DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error
}

// TagRepository はタグデータの永続化インターフェース。
type TagRepository interface {
	// FindByPublicID は指定公開IDのタグを取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Tag, error)

	// FindByName は指定名のタグを取得する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Tag, error)

	// List はフィルタ条件に一致するタグ一覧を名前昇順で返す。
	List(ctx context.Context, filter model.TagFilter) ([]*model.Tag, error)

	// Create はタグを作成する。名前重複時はユニーク制約違反を返す。
	Create(ctx context.Context, tag *model.Tag) error

	// DeleteByPublicID は指定公開IDのタグを削除する。
	// 関連するarticle_tagsはCASCADE削除される。
	DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// FindByPublicID は指定公開IDのコメントを取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Comment, error)

	// ListByArticle は記事のコメント一覧を返す。
	// created_at昇順でカーソルベースページネーションを使用する。
	ListByArticle(ctx context.Context, articlePublicID uuid.UUID, page model.Pagination) ([]*model.Comment, error)

	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error

	// Update はコメント本文を更新する。
	Update(ctx context.Context, comment *model.Comment) error

	// DeleteByPublicID は指定公開IDのコメントを削除する。
	DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error
}

// ImageRepository は画像データの永続化インターフェース。
// メタデータとバイナリ本体の取得は分離し、一覧ではバイナリを読み込まない。
type ImageRepository interface {
	// FindByPublicID は指定公開IDの画像メタデータを取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Image, error)

	// FindDataByPublicID は指定公開IDの画像バイナリを取得する。見つからない場合はnilを返す。
	FindDataByPublicID(ctx context.Context, publicID uuid.UUID) (*model.ImageData, error)

	// FindWithOwner は画像メタデータと所属記事の所有者を同時に取得する。
	// 所有権検証のためのJOIN取得。見つからない場合はnilを返す。
	FindWithOwner(ctx context.Context, publicID uuid.UUID) (*model.ImageWithOwner, error)

	// ListByArticle は記事の画像メタデータ一覧を返す。
	ListByArticle(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Image, error)

	// Create は画像を作成する。
	Create(ctx context.Context, image *model.Image, data []byte) error

	// DeleteByPublicID は指定公開IDの画像を削除する。
	DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error
}

// IsUniqueViolation はPostgreSQLのユニーク制約違反かどうかを判定する。
// カテゴリ・タグの名前重複をコンフリクトとして扱うために使う。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// IsForeignKeyViolation はPostgreSQLの外部キー制約違反かどうかを判定する。
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
