package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// PostgresTagRepo はPostgreSQLを使用したタグリポジトリ。
type PostgresTagRepo struct {
	db *sql.DB
}

// NewPostgresTagRepo はPostgresTagRepoを生成する。
func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

// FindByPublicID は指定公開IDのタグを取得する。見つからない場合はnilを返す。
func (r *PostgresTagRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Tag, error) {
	tag := &model.Tag{}
	err := r.db.QueryRowContext(ctx,
		`SELECT public_id, name, created_at, updated_at FROM tags WHERE public_id = $1`,
		publicID,
	).Scan(&tag.PublicID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tag by public ID: %w", err)
	}

	return tag, nil
}

// FindByName は指定名のタグを取得する。見つからない場合はnilを返す。
func (r *PostgresTagRepo) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	tag := &model.Tag{}
	err := r.db.QueryRowContext(ctx,
		`SELECT public_id, name, created_at, updated_at FROM tags WHERE name = $1`,
		name,
	).Scan(&tag.PublicID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tag by name: %w", err)
	}

	return tag, nil
}

// List はフィルタ条件に一致するタグ一覧を名前昇順で返す。
func (r *PostgresTagRepo) List(ctx context.Context, filter model.TagFilter) ([]*model.Tag, error) {
	query := `SELECT public_id, name, created_at, updated_at FROM tags`
	args := []any{}

	if filter.Name != nil {
		query += ` WHERE name = $1`
		args = append(args, *filter.Name)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []*model.Tag{}
	for rows.Next() {
		tag := &model.Tag{}
		if err := rows.Scan(&tag.PublicID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, nil
}

// Create はタグを作成する。名前重複時はユニーク制約違反を返す。
func (r *PostgresTagRepo) Create(ctx context.Context, tag *model.Tag) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (public_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		tag.PublicID, tag.Name, tag.CreatedAt, tag.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

// DeleteByPublicID は指定公開IDのタグを削除する。
// 関連するarticle_tagsはCASCADE削除される。
func (r *PostgresTagRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tags WHERE public_id = $1`,
		publicID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("tag not found: %s", publicID)
	}
	return nil
}

// compile-time interface check
var _ TagRepository = (*PostgresTagRepo)(nil)
