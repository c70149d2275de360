package article

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// mockArticleRepo はArticleRepositoryのテスト用実装。
type mockArticleRepo struct {
	findByPublicIDFunc   func(ctx context.Context, publicID uuid.UUID) (*model.Article, error)
	listFunc             func(ctx context.Context, filter model.ArticleFilter, page model.Pagination) ([]*model.Article, error)
	listByTagFunc        func(ctx context.Context, tagPublicID uuid.UUID, page model.Pagination) ([]*model.Article, error)
	createFunc           func(ctx context.Context, article *model.Article) error
	updateFunc           func(ctx context.Context, article *model.Article) error
	deleteByPublicIDFunc func(ctx context.Context, publicID uuid.UUID) error
	replaceTagsFunc      func(ctx context.Context, articlePublicID uuid.UUID, tagPublicIDs []uuid.UUID) error
	listTagsFunc         func(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Tag, error)
}

func (m *mockArticleRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
	return m.findByPublicIDFunc(ctx, publicID)
}

func (m *mockArticleRepo) List(ctx context.Context, filter model.ArticleFilter, page model.Pagination) ([]*model.Article, error) {
	return m.listFunc(ctx, filter, page)
}

func (m *mockArticleRepo) ListByTag(ctx context.Context, tagPublicID uuid.UUID, page model.Pagination) ([]*model.Article, error) {
	return m.listByTagFunc(ctx, tagPublicID, page)
}

func (m *mockArticleRepo) Create(ctx context.Context, article *model.Article) error {
	return m.createFunc(ctx, article)
}

func (m *mockArticleRepo) Update(ctx context.Context, article *model.Article) error {
	return m.updateFunc(ctx, article)
}

func (m *mockArticleRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	return m.deleteByPublicIDFunc(ctx, publicID)
}

func (m *mockArticleRepo) ReplaceTags(ctx context.Context, articlePublicID uuid.UUID, tagPublicIDs []uuid.UUID) error {
	return m.replaceTagsFunc(ctx, articlePublicID, tagPublicIDs)
}

func (m *mockArticleRepo) ListTags(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Tag, error) {
	return m.listTagsFunc(ctx, articlePublicID)
}

// mockCategoryRepo はCategoryRepositoryのテスト用実装。
type mockCategoryRepo struct {
	findByPublicIDFunc func(ctx context.Context, publicID uuid.UUID) (*model.Category, error)
}

func (m *mockCategoryRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Category, error) {
	return m.findByPublicIDFunc(ctx, publicID)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*model.Category, error) { return nil, nil }

func (m *mockCategoryRepo) Create(ctx context.Context, category *model.Category) error { return nil }

func (m *mockCategoryRepo) Update(ctx context.Context, category *model.Category) error { return nil }

func (m *mockCategoryRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	return nil
}

// mockTagRepo はTagRepositoryのテスト用実装。
type mockTagRepo struct {
	findByPublicIDFunc func(ctx context.Context, publicID uuid.UUID) (*model.Tag, error)
}

func (m *mockTagRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Tag, error) {
	return m.findByPublicIDFunc(ctx, publicID)
}

func (m *mockTagRepo) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	return nil, nil
}

func (m *mockTagRepo) List(ctx context.Context, filter model.TagFilter) ([]*model.Tag, error) {
	return nil, nil
}

func (m *mockTagRepo) Create(ctx context.Context, tag *model.Tag) error { return nil }

func (m *mockTagRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error { return nil }

// passthroughSanitizer はサニタイズをマーカー付与で模倣するテスト用実装。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(rawHTML string) string {
	return "sanitized:" + rawHTML
}

func TestService_Create_SanitizesBody(t *testing.T) {
	var created *model.Article
	articleRepo := &mockArticleRepo{
		createFunc: func(ctx context.Context, article *model.Article) error {
			created = article
			return nil
		},
	}

	service := NewService(articleRepo, &mockCategoryRepo{}, &mockTagRepo{}, passthroughSanitizer{})
	userID := uuid.New()

	article, apiErr := service.Create(context.Background(), userID, model.NewArticle{
		Title:  "テスト記事",
		Body:   "<p>本文</p>",
		Status: model.StatusDraft,
	})
	if apiErr != nil {
		t.Fatalf("Create failed: %v", apiErr)
	}

	if created == nil {
		t.Fatal("article should be persisted")
	}
	if article.Body != "sanitized:<p>本文</p>" {
		t.Errorf("body = %q, want sanitized body", article.Body)
	}
	if article.UserPublicID != userID {
		t.Errorf("owner = %v, want %v", article.UserPublicID, userID)
	}
	if article.Status != model.StatusDraft {
		t.Errorf("status = %q, want %q", article.Status, model.StatusDraft)
	}
}

func TestService_Create_ValidationFailure(t *testing.T) {
	service := NewService(&mockArticleRepo{}, &mockCategoryRepo{}, &mockTagRepo{}, passthroughSanitizer{})

	_, apiErr := service.Create(context.Background(), uuid.New(), model.NewArticle{
		Title:  "", // タイトル必須
		Body:   "本文",
		Status: model.StatusDraft,
	})
	if apiErr == nil {
		t.Fatal("expected validation error")
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}
}

func TestService_Create_UnknownCategory(t *testing.T) {
	categoryRepo := &mockCategoryRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Category, error) {
			return nil, nil
		},
	}
	service := NewService(&mockArticleRepo{}, categoryRepo, &mockTagRepo{}, passthroughSanitizer{})
	categoryID := uuid.New()

	_, apiErr := service.Create(context.Background(), uuid.New(), model.NewArticle{
		Title:            "テスト記事",
		Body:             "本文",
		Status:           model.StatusDraft,
		CategoryPublicID: &categoryID,
	})
	if apiErr == nil {
		t.Fatal("expected error for unknown category")
	}
	if apiErr.Code != model.ErrCodeCategoryNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeCategoryNotFound)
	}
}

func TestService_Get_NotFound(t *testing.T) {
	articleRepo := &mockArticleRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
			return nil, nil
		},
	}
	service := NewService(articleRepo, &mockCategoryRepo{}, &mockTagRepo{}, passthroughSanitizer{})

	_, apiErr := service.Get(context.Background(), uuid.New())
	if apiErr == nil {
		t.Fatal("expected not found error")
	}
	if apiErr.Code != model.ErrCodeArticleNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeArticleNotFound)
	}
}

func existingArticle(owner uuid.UUID) *model.Article {
	return &model.Article{
		PublicID:     uuid.New(),
		UserPublicID: owner,
		Title:        "既存記事",
		Body:         "<p>既存本文</p>",
		Status:       model.StatusPublished,
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now().Add(-time.Hour),
	}
}

func TestService_Update_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	article := existingArticle(owner)

	articleRepo := &mockArticleRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
			return article, nil
		},
		updateFunc: func(ctx context.Context, a *model.Article) error {
			return nil
		},
	}
	service := NewService(articleRepo, &mockCategoryRepo{}, &mockTagRepo{}, passthroughSanitizer{})

	// 他人による更新は所有権違反
	title := "書き換え"
	_, apiErr := service.Update(context.Background(), uuid.New(), article.PublicID, model.UpdateArticle{Title: &title})
	if apiErr == nil {
		t.Fatal("expected ownership error for non-owner")
	}
	if apiErr.Code != model.ErrCodeOwnershipViolation {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeOwnershipViolation)
	}

	// 所有者による更新は成功し、指定フィールドのみ変更される
	updated, apiErr := service.Update(context.Background(), owner, article.PublicID, model.UpdateArticle{Title: &title})
	if apiErr != nil {
		t.Fatalf("Update failed: %v", apiErr)
	}
	if updated.Title != "書き換え" {
		t.Errorf("title = %q, want %q", updated.Title, "書き換え")
	}
	if updated.Body != "<p>既存本文</p>" {
		t.Errorf("body should not change: %q", updated.Body)
	}
}

func TestService_Delete_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	article := existingArticle(owner)
	deleted := false

	articleRepo := &mockArticleRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
			return article, nil
		},
		deleteByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	service := NewService(articleRepo, &mockCategoryRepo{}, &mockTagRepo{}, passthroughSanitizer{})

	if apiErr := service.Delete(context.Background(), uuid.New(), article.PublicID); apiErr == nil {
		t.Fatal("expected ownership error for non-owner")
	}
	if deleted {
		t.Fatal("article must not be deleted by non-owner")
	}

	if apiErr := service.Delete(context.Background(), owner, article.PublicID); apiErr != nil {
		t.Fatalf("Delete failed: %v", apiErr)
	}
	if !deleted {
		t.Fatal("article should be deleted by owner")
	}
}

func TestService_SetTags_UnknownTag(t *testing.T) {
	owner := uuid.New()
	article := existingArticle(owner)

	articleRepo := &mockArticleRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
			return article, nil
		},
	}
	tagRepo := &mockTagRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Tag, error) {
			return nil, nil // 存在しないタグ
		},
	}
	service := NewService(articleRepo, &mockCategoryRepo{}, tagRepo, passthroughSanitizer{})

	_, apiErr := service.SetTags(context.Background(), owner, article.PublicID, []uuid.UUID{uuid.New()})
	if apiErr == nil {
		t.Fatal("expected error for unknown tag")
	}
	if apiErr.Code != model.ErrCodeTagNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeTagNotFound)
	}
}

func TestService_SetTags_ReplacesAndReturnsTags(t *testing.T) {
	owner := uuid.New()
	article := existingArticle(owner)
	tagID := uuid.New()
	var replacedWith []uuid.UUID

	articleRepo := &mockArticleRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Article, error) {
			return article, nil
		},
		replaceTagsFunc: func(ctx context.Context, articlePublicID uuid.UUID, tagPublicIDs []uuid.UUID) error {
			replacedWith = tagPublicIDs
			return nil
		},
		listTagsFunc: func(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Tag, error) {
			return []*model.Tag{{PublicID: tagID, Name: "go"}}, nil
		},
	}
	tagRepo := &mockTagRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Tag, error) {
			return &model.Tag{PublicID: publicID, Name: "go"}, nil
		},
	}
	service := NewService(articleRepo, &mockCategoryRepo{}, tagRepo, passthroughSanitizer{})

	tags, apiErr := service.SetTags(context.Background(), owner, article.PublicID, []uuid.UUID{tagID})
	if apiErr != nil {
		t.Fatalf("SetTags failed: %v", apiErr)
	}
	if len(replacedWith) != 1 || replacedWith[0] != tagID {
		t.Errorf("replaced tags = %v, want [%v]", replacedWith, tagID)
	}
	if len(tags) != 1 || tags[0].Name != "go" {
		t.Errorf("tags = %v, want single go tag", tags)
	}
}

func TestService_List_InvalidPerPage(t *testing.T) {
	service := NewService(&mockArticleRepo{}, &mockCategoryRepo{}, &mockTagRepo{}, passthroughSanitizer{})

	_, apiErr := service.List(context.Background(), model.ArticleFilter{}, model.Pagination{PerPage: 0})
	if apiErr == nil {
		t.Fatal("expected validation error for per_page=0")
	}

	_, apiErr = service.List(context.Background(), model.ArticleFilter{}, model.Pagination{PerPage: 101})
	if apiErr == nil {
		t.Fatal("expected validation error for per_page=101")
	}
}
