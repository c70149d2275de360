package repository

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
)

// 各Postgresリポジトリがインターフェースを満たすことを検証
func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
	var _ ArticleRepository = (*PostgresArticleRepo)(nil)
	var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
	var _ TagRepository = (*PostgresTagRepo)(nil)
	var _ CommentRepository = (*PostgresCommentRepo)(nil)
	var _ ImageRepository = (*PostgresImageRepo)(nil)
}

// 各コンストラクタが正しく初期化されることを検証
func TestNewPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Fatal("expected non-nil user repo")
	}
	if NewPostgresArticleRepo(nil) == nil {
		t.Fatal("expected non-nil article repo")
	}
	if NewPostgresCategoryRepo(nil) == nil {
		t.Fatal("expected non-nil category repo")
	}
	if NewPostgresTagRepo(nil) == nil {
		t.Fatal("expected non-nil tag repo")
	}
	if NewPostgresCommentRepo(nil) == nil {
		t.Fatal("expected non-nil comment repo")
	}
	if NewPostgresImageRepo(nil) == nil {
		t.Fatal("expected non-nil image repo")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pq.Error{Code: "23505"}
	if !IsUniqueViolation(uniqueErr) {
		t.Error("23505 should be a unique violation")
	}
	// ラップされていても判定できること
	if !IsUniqueViolation(fmt.Errorf("failed to insert category: %w", uniqueErr)) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("23503 is not a unique violation")
	}
	if IsUniqueViolation(fmt.Errorf("plain error")) {
		t.Error("non-pq error is not a unique violation")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	fkErr := &pq.Error{Code: "23503"}
	if !IsForeignKeyViolation(fkErr) {
		t.Error("23503 should be a foreign key violation")
	}
	if IsForeignKeyViolation(&pq.Error{Code: "23505"}) {
		t.Error("23505 is not a foreign key violation")
	}
}
