package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

const articleColumns = `public_id, user_public_id, title, body, status, category_public_id, created_at, updated_at`

// scanArticle は1行を記事にスキャンする。
func scanArticle(row interface{ Scan(...any) error }) (*model.Article, error) {
	article := &model.Article{}
	err := row.Scan(
		&article.PublicID,
		&article.UserPublicID,
		&article.Title,
		&article.Body,
		&article.Status,
		&article.CategoryPublicID,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// FindByPublicID は指定公開IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE public_id = $1`,
		publicID,
	)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by public ID: %w", err)
	}

	return article, nil
}

// List はフィルタ条件に一致する記事一覧を返す。
// created_at降順、同時刻は内部ID降順でカーソルベースページネーションを使用する。
func (r *PostgresArticleRepo) List(ctx context.Context, filter model.ArticleFilter, page model.Pagination) ([]*model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE 1=1`
	args := []any{}
	idx := 1

	if filter.UserPublicID != nil {
		query += fmt.Sprintf(" AND user_public_id = $%d", idx)
		args = append(args, *filter.UserPublicID)
		idx++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *filter.Status)
		idx++
	}
	if filter.CategoryPublicID != nil {
		query += fmt.Sprintf(" AND category_public_id = $%d", idx)
		args = append(args, *filter.CategoryPublicID)
		idx++
	}
	if page.Cursor != nil {
		// カーソル記事より古いものだけを返す
		query += fmt.Sprintf(" AND (created_at, id) < (SELECT created_at, id FROM articles WHERE public_id = $%d)", idx)
		args = append(args, *page.Cursor)
		idx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", idx)
	args = append(args, page.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// ListByTag は指定タグが付与された記事一覧を返す。
func (r *PostgresArticleRepo) ListByTag(ctx context.Context, tagPublicID uuid.UUID, page model.Pagination) ([]*model.Article, error) {
	query := `SELECT a.public_id, a.user_public_id, a.title, a.body, a.status, a.category_public_id, a.created_at, a.updated_at
		 FROM articles a
		 JOIN article_tags at ON at.article_public_id = a.public_id
		 WHERE at.tag_public_id = $1`
	args := []any{tagPublicID}
	idx := 2

	if page.Cursor != nil {
		query += fmt.Sprintf(" AND (a.created_at, a.id) < (SELECT created_at, id FROM articles WHERE public_id = $%d)", idx)
		args = append(args, *page.Cursor)
		idx++
	}

	query += fmt.Sprintf(" ORDER BY a.created_at DESC, a.id DESC LIMIT $%d", idx)
	args = append(args, page.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles by tag: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// collectArticles はクエリ結果を記事スライスに変換する。
func collectArticles(rows *sql.Rows) ([]*model.Article, error) {
	articles := []*model.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

// Create は記事を作成する。
func (r *PostgresArticleRepo) Create(ctx context.Context, article *model.Article) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (public_id, user_public_id, title, body, status, category_public_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		article.PublicID, article.UserPublicID, article.Title, article.Body, article.Status, article.CategoryPublicID,
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

// Update は記事を上書き更新する。
func (r *PostgresArticleRepo) Update(ctx context.Context, article *model.Article) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles
		 SET title = $1, body = $2, status = $3, category_public_id = $4, updated_at = $5
		 WHERE public_id = $6`,
		article.Title, article.Body, article.Status, article.CategoryPublicID, article.UpdatedAt, article.PublicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	return nil
}

// DeleteByPublicID は指定公開IDの記事を削除する。
// 関連するarticle_tags、comments、imagesはCASCADE削除される。
func (r *PostgresArticleRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM articles WHERE public_id = $1`,
		publicID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("article not found: %s", publicID)
	}
	return nil
}

// ReplaceTags は記事のタグ付けを同一トランザクションで置き換える。
func (r *PostgresArticleRepo) ReplaceTags(ctx context.Context, articlePublicID uuid.UUID, tagPublicIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM article_tags WHERE article_public_id = $1`,
		articlePublicID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear article tags: %w", err)
	}

	for _, tagID := range tagPublicIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_public_id, tag_public_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			articlePublicID, tagID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert article tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListTags は記事に付与されたタグ一覧を返す。
func (r *PostgresArticleRepo) ListTags(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.public_id, t.name, t.created_at, t.updated_at
		 FROM tags t
		 JOIN article_tags at ON at.tag_public_id = t.public_id
		 WHERE at.article_public_id = $1
		 ORDER BY t.name ASC`,
		articlePublicID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list article tags: %w", err)
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

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
