package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// FindByPublicID は指定公開IDのコメントを取得する。見つからない場合はnilを返す。
func (r *PostgresCommentRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Comment, error) {
	comment := &model.Comment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT public_id, user_public_id, user_name, article_public_id, body, created_at, updated_at
		 FROM comments WHERE public_id = $1`,
		publicID,
	).Scan(&comment.PublicID, &comment.UserPublicID, &comment.UserName, &comment.ArticlePublicID,
		&comment.Body, &comment.CreatedAt, &comment.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment by public ID: %w", err)
	}

	return comment, nil
}

// ListByArticle は記事のコメント一覧を返す。
// created_at昇順、同時刻は内部ID昇順でカーソルベースページネーションを使用する。
func (r *PostgresCommentRepo) ListByArticle(ctx context.Context, articlePublicID uuid.UUID, page model.Pagination) ([]*model.Comment, error) {
	query := `SELECT public_id, user_public_id, user_name, article_public_id, body, created_at, updated_at
		 FROM comments WHERE article_public_id = $1`
	args := []any{articlePublicID}
	idx := 2

	if page.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) > (SELECT created_at, id FROM comments WHERE public_id = $%d)", idx)
		args = append(args, *page.Cursor)
		idx++
	}

	query += fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT $%d", idx)
	args = append(args, page.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []*model.Comment{}
	for rows.Next() {
		comment := &model.Comment{}
		if err := rows.Scan(&comment.PublicID, &comment.UserPublicID, &comment.UserName, &comment.ArticlePublicID,
			&comment.Body, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

// Create はコメントを作成する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (public_id, user_public_id, user_name, article_public_id, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		comment.PublicID, comment.UserPublicID, comment.UserName, comment.ArticlePublicID,
		comment.Body, comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// Update はコメント本文を更新する。
func (r *PostgresCommentRepo) Update(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE comments SET body = $1, updated_at = $2 WHERE public_id = $3`,
		comment.Body, comment.UpdatedAt, comment.PublicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// DeleteByPublicID は指定公開IDのコメントを削除する。
func (r *PostgresCommentRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM comments WHERE public_id = $1`,
		publicID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("comment not found: %s", publicID)
	}
	return nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
