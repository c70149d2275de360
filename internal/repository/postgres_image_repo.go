package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// PostgresImageRepo はPostgreSQLを使用した画像リポジトリ。
// バイナリ本体はbytea列に保存し、メタデータ取得では読み込まない。
type PostgresImageRepo struct {
	db *sql.DB
}

// NewPostgresImageRepo はPostgresImageRepoを生成する。
func NewPostgresImageRepo(db *sql.DB) *PostgresImageRepo {
	return &PostgresImageRepo{db: db}
}

const imageMetaColumns = `public_id, name, mime_type, url, storage_type, article_public_id, created_at, updated_at`

// FindByPublicID は指定公開IDの画像メタデータを取得する。見つからない場合はnilを返す。
func (r *PostgresImageRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Image, error) {
	image := &model.Image{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+imageMetaColumns+` FROM images WHERE public_id = $1`,
		publicID,
	).Scan(&image.PublicID, &image.Name, &image.MimeType, &image.URL, &image.StorageType,
		&image.ArticlePublicID, &image.CreatedAt, &image.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find image by public ID: %w", err)
	}

	return image, nil
}

// FindDataByPublicID は指定公開IDの画像バイナリを取得する。見つからない場合はnilを返す。
func (r *PostgresImageRepo) FindDataByPublicID(ctx context.Context, publicID uuid.UUID) (*model.ImageData, error) {
	data := &model.ImageData{}
	err := r.db.QueryRowContext(ctx,
		`SELECT mime_type, data FROM images WHERE public_id = $1`,
		publicID,
	).Scan(&data.MimeType, &data.Data)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find image data by public ID: %w", err)
	}

	return data, nil
}

// FindWithOwner は画像メタデータと所属記事の所有者を同時に取得する。見つからない場合はnilを返す。
func (r *PostgresImageRepo) FindWithOwner(ctx context.Context, publicID uuid.UUID) (*model.ImageWithOwner, error) {
	result := &model.ImageWithOwner{}
	err := r.db.QueryRowContext(ctx,
		`SELECT i.public_id, i.name, i.mime_type, i.url, i.storage_type, i.article_public_id,
		        i.created_at, i.updated_at, a.user_public_id
		 FROM images i
		 JOIN articles a ON a.public_id = i.article_public_id
		 WHERE i.public_id = $1`,
		publicID,
	).Scan(&result.PublicID, &result.Name, &result.MimeType, &result.URL, &result.StorageType,
		&result.ArticlePublicID, &result.CreatedAt, &result.UpdatedAt, &result.ArticleOwnerID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find image with owner: %w", err)
	}

	return result, nil
}

// ListByArticle は記事の画像メタデータ一覧を作成日時昇順で返す。
func (r *PostgresImageRepo) ListByArticle(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Image, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+imageMetaColumns+` FROM images WHERE article_public_id = $1 ORDER BY created_at ASC, id ASC`,
		articlePublicID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := []*model.Image{}
	for rows.Next() {
		image := &model.Image{}
		if err := rows.Scan(&image.PublicID, &image.Name, &image.MimeType, &image.URL, &image.StorageType,
			&image.ArticlePublicID, &image.CreatedAt, &image.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate images: %w", err)
	}

	return images, nil
}

// Create は画像を作成する。
func (r *PostgresImageRepo) Create(ctx context.Context, image *model.Image, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO images (public_id, name, mime_type, data, url, storage_type, article_public_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		image.PublicID, image.Name, image.MimeType, data, image.URL, image.StorageType,
		image.ArticlePublicID, image.CreatedAt, image.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

// DeleteByPublicID は指定公開IDの画像を削除する。
func (r *PostgresImageRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM images WHERE public_id = $1`,
		publicID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("image not found: %s", publicID)
	}
	return nil
}

// compile-time interface check
var _ ImageRepository = (*PostgresImageRepo)(nil)
