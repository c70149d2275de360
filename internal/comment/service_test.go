package comment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// mockCommentRepo はCommentRepositoryのテスト用実装。
type mockCommentRepo struct {
	findByPublicIDFunc   func(ctx context.Context, publicID uuid.UUID) (*model.Comment, error)
	listByArticleFunc    func(ctx context.Context, articlePublicID uuid.UUID, page model.Pagination) ([]*model.Comment, error)
	createFunc           func(ctx context.Context, comment *model.Comment) error
	updateFunc           func(ctx context.Context, comment *model.Comment) error
	deleteByPublicIDFunc func(ctx context.Context, publicID uuid.UUID) error
}

func (m *mockCommentRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Comment, error) {
	return m.findByPublicIDFunc(ctx, publicID)
}

func (m *mockCommentRepo) ListByArticle(ctx context.Context, articlePublicID uuid.UUID, page model.Pagination) ([]*model.Comment, error) {
	return m.listByArticleFunc(ctx, articlePublicID, page)
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	return m.createFunc(ctx, comment)
}

func (m *mockCommentRepo) Update(ctx context.Context, comment *model.Comment) error {
	return m.updateFunc(ctx, comment)
}

func (m *mockCommentRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	return m.deleteByPublicIDFunc(ctx, publicID)
}

// mockArticleRepo は記事の存在確認のみに使うテスト用実装。
type mockArticleRepo struct {
	findByPublicIDFunc func(ctx context.Context, publicID uuid.UUID) (*model.Article, error)
}

func (m *mockArticleRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
	return m.findByPublicIDFunc(ctx, publicID)
}

func (m *mockArticleRepo) List(ctx context.Context, filter model.ArticleFilter, page model.Pagination) ([]*model.Article, error) {
	return nil, nil
}

func (m *mockArticleRepo) ListByTag(ctx context.Context, tagPublicID uuid.UUID, page model.Pagination) ([]*model.Article, error) {
	return nil, nil
}

func (m *mockArticleRepo) Create(ctx context.Context, article *model.Article) error { return nil }

func (m *mockArticleRepo) Update(ctx context.Context, article *model.Article) error { return nil }

func (m *mockArticleRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	return nil
}

func (m *mockArticleRepo) ReplaceTags(ctx context.Context, articlePublicID uuid.UUID, tagPublicIDs []uuid.UUID) error {
	return nil
}

func (m *mockArticleRepo) ListTags(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Tag, error) {
	return nil, nil
}

// passthroughSanitizer はサニタイズをマーカー付与で模倣するテスト用実装。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(rawHTML string) string {
	return "sanitized:" + rawHTML
}

func articleExists(owner uuid.UUID) *mockArticleRepo {
	return &mockArticleRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
			return &model.Article{PublicID: publicID, UserPublicID: owner, Status: model.StatusPublished}, nil
		},
	}
}

func TestService_Create_AuthenticatedUser(t *testing.T) {
	var created *model.Comment
	commentRepo := &mockCommentRepo{
		createFunc: func(ctx context.Context, comment *model.Comment) error {
			created = comment
			return nil
		},
	}
	service := NewService(commentRepo, articleExists(uuid.New()), passthroughSanitizer{})

	userID := uuid.New()
	guestName := "無視される名前"
	comment, apiErr := service.Create(context.Background(), &userID, model.NewComment{
		ArticlePublicID: uuid.New(),
		Body:            "良い記事でした",
		UserName:        &guestName,
	})
	if apiErr != nil {
		t.Fatalf("Create failed: %v", apiErr)
	}

	if created == nil {
		t.Fatal("comment should be persisted")
	}
	if comment.UserPublicID == nil || *comment.UserPublicID != userID {
		t.Error("authenticated comment should have owner")
	}
	// ログインユーザーの投稿ではUserNameは使わない
	if comment.UserName != nil {
		t.Errorf("user_name should be nil for authenticated comment, got %q", *comment.UserName)
	}
	if comment.Body != "sanitized:良い記事でした" {
		t.Errorf("body = %q, want sanitized body", comment.Body)
	}
}

func TestService_Create_Guest(t *testing.T) {
	commentRepo := &mockCommentRepo{
		createFunc: func(ctx context.Context, comment *model.Comment) error { return nil },
	}
	service := NewService(commentRepo, articleExists(uuid.New()), passthroughSanitizer{})

	guestName := "通りすがり"
	comment, apiErr := service.Create(context.Background(), nil, model.NewComment{
		ArticlePublicID: uuid.New(),
		Body:            "ゲストコメント",
		UserName:        &guestName,
	})
	if apiErr != nil {
		t.Fatalf("Create failed: %v", apiErr)
	}

	if comment.UserPublicID != nil {
		t.Error("guest comment should have no owner")
	}
	if comment.UserName == nil || *comment.UserName != "通りすがり" {
		t.Error("guest comment should keep display name")
	}
}

func TestService_Create_ArticleNotFound(t *testing.T) {
	articleRepo := &mockArticleRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
			return nil, nil
		},
	}
	service := NewService(&mockCommentRepo{}, articleRepo, passthroughSanitizer{})

	_, apiErr := service.Create(context.Background(), nil, model.NewComment{
		ArticlePublicID: uuid.New(),
		Body:            "本文",
	})
	if apiErr == nil {
		t.Fatal("expected error for missing article")
	}
	if apiErr.Code != model.ErrCodeArticleNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeArticleNotFound)
	}
}

func TestService_Update_GuestCommentAlwaysRejected(t *testing.T) {
	guestName := "通りすがり"
	guestComment := &model.Comment{
		PublicID:        uuid.New(),
		UserPublicID:    nil, // ゲスト投稿
		UserName:        &guestName,
		ArticlePublicID: uuid.New(),
		Body:            "ゲストコメント",
	}

	commentRepo := &mockCommentRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Comment, error) {
			return guestComment, nil
		},
	}
	service := NewService(commentRepo, articleExists(uuid.New()), passthroughSanitizer{})

	body := "書き換え"
	_, apiErr := service.Update(context.Background(), uuid.New(), guestComment.PublicID, model.UpdateComment{Body: &body})
	if apiErr == nil {
		t.Fatal("guest comment must not be updatable by anyone")
	}
	if apiErr.Code != model.ErrCodeOwnershipViolation {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeOwnershipViolation)
	}
}

func TestService_Update_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	comment := &model.Comment{
		PublicID:        uuid.New(),
		UserPublicID:    &owner,
		ArticlePublicID: uuid.New(),
		Body:            "元の本文",
		CreatedAt:       time.Now().Add(-time.Hour),
	}

	commentRepo := &mockCommentRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Comment, error) {
			return comment, nil
		},
		updateFunc: func(ctx context.Context, c *model.Comment) error { return nil },
	}
	service := NewService(commentRepo, articleExists(owner), passthroughSanitizer{})

	body := "修正後"
	if _, apiErr := service.Update(context.Background(), uuid.New(), comment.PublicID, model.UpdateComment{Body: &body}); apiErr == nil {
		t.Fatal("expected ownership error for non-owner")
	}

	updated, apiErr := service.Update(context.Background(), owner, comment.PublicID, model.UpdateComment{Body: &body})
	if apiErr != nil {
		t.Fatalf("Update failed: %v", apiErr)
	}
	if updated.Body != "sanitized:修正後" {
		t.Errorf("body = %q, want sanitized body", updated.Body)
	}
}

func TestService_Delete_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	comment := &model.Comment{
		PublicID:     uuid.New(),
		UserPublicID: &owner,
	}
	deleted := false

	commentRepo := &mockCommentRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Comment, error) {
			return comment, nil
		},
		deleteByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	service := NewService(commentRepo, articleExists(owner), passthroughSanitizer{})

	if apiErr := service.Delete(context.Background(), uuid.New(), comment.PublicID); apiErr == nil {
		t.Fatal("expected ownership error for non-owner")
	}
	if deleted {
		t.Fatal("comment must not be deleted by non-owner")
	}

	if apiErr := service.Delete(context.Background(), owner, comment.PublicID); apiErr != nil {
		t.Fatalf("Delete failed: %v", apiErr)
	}
	if !deleted {
		t.Fatal("comment should be deleted by owner")
	}
}

func TestService_ListByArticle_ArticleNotFound(t *testing.T) {
	articleRepo := &mockArticleRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
			return nil, nil
		},
	}
	service := NewService(&mockCommentRepo{}, articleRepo, passthroughSanitizer{})

	_, apiErr := service.ListByArticle(context.Background(), uuid.New(), model.DefaultPagination())
	if apiErr == nil {
		t.Fatal("expected error for missing article")
	}
	if apiErr.Code != model.ErrCodeArticleNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeArticleNotFound)
	}
}
