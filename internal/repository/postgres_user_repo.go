package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByPublicID は指定公開IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT public_id, name, role, is_active, last_login_at, created_at, updated_at
		 FROM users WHERE public_id = $1`,
		publicID,
	).Scan(&user.PublicID, &user.Name, &user.Role, &user.IsActive, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by public ID: %w", err)
	}

	return user, nil
}

// FindByProviderSubject はproviderとprovider_user_idで既存ユーザーを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByProviderSubject(ctx context.Context, provider, providerUserID string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT u.public_id, u.name, u.role, u.is_active, u.last_login_at, u.created_at, u.updated_at
		 FROM users u
		 JOIN identities i ON i.user_id = u.id
		 WHERE i.provider = $1 AND i.provider_user_id = $2`,
		provider, providerUserID,
	).Scan(&user.PublicID, &user.Name, &user.Role, &user.IsActive, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by provider subject: %w", err)
	}

	return user, nil
}

// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
func (r *PostgresUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ユーザーを作成し、内部IDを取得
	var userID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (public_id, name, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		user.PublicID, user.Name, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&userID)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	// identityを作成。メールアドレスは保護済みの暗号文・nonce・ハッシュのみ保存する
	_, err = tx.ExecContext(ctx,
		`INSERT INTO identities (user_id, provider, provider_user_id, email_cipher, email_nonce, email_hash, email_verified, is_primary, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		userID, identity.Provider, identity.ProviderUserID,
		identity.Email.Cipher, identity.Email.Nonce, identity.Email.Hash,
		identity.EmailVerified, identity.IsPrimary, identity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert identity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update はユーザーの表示名を更新し、更新後のユーザーを返す。見つからない場合はnilを返す。
func (r *PostgresUserRepo) Update(ctx context.Context, publicID uuid.UUID, name string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET name = $1, updated_at = now()
		 WHERE public_id = $2
		 RETURNING public_id, name, role, is_active, last_login_at, created_at, updated_at`,
		name, publicID,
	).Scan(&user.PublicID, &user.Name, &user.Role, &user.IsActive, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// UpdateLastLogin は最終ログイン日時を更新する。
func (r *PostgresUserRepo) UpdateLastLogin(ctx context.Context, publicID uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $1 WHERE public_id = $2`,
		at, publicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// DeleteByPublicID は指定公開IDのユーザーを削除する。
// 関連するidentities、articlesはCASCADE削除され、コメントの所有者はNULLになる。
func (r *PostgresUserRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE public_id = $1`,
		publicID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", publicID)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
