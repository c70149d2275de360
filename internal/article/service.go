// Package article は記事管理のドメインロジックを提供する。
package article

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/auth"
	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/repository"
	"github.com/hitoshi/blogd/internal/security"
)

// Service は記事管理のサービス層。
// 記事のCRUD、タグ付け、所有権検証のビジネスロジックを提供する。
type Service struct {
	articleRepo  repository.ArticleRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	sanitizer    security.ContentSanitizerService
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	articleRepo repository.ArticleRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		articleRepo:  articleRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		sanitizer:    sanitizer,
		now:          time.Now,
	}
}

// Create は記事を作成する。本文は保存前にサニタイズされる。
// カテゴリを指定する場合は存在確認を行う。
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input model.NewArticle) (*model.Article, *model.APIError) {
	if apiErr := input.Validate(); apiErr != nil {
		return nil, apiErr
	}

	if input.CategoryPublicID != nil {
		category, err := s.categoryRepo.FindByPublicID(ctx, *input.CategoryPublicID)
		if err != nil {
			return nil, model.NewDatabaseError(fmt.Sprintf("failed to find category: %v", err))
		}
		if category == nil {
			return nil, model.NewCategoryNotFoundError(input.CategoryPublicID.String())
		}
	}

	now := s.now()
	article := &model.Article{
		PublicID:         uuid.New(),
		UserPublicID:     userID,
		Title:            input.Title,
		Body:             s.sanitizer.Sanitize(input.Body),
		Status:           input.Status,
		CategoryPublicID: input.CategoryPublicID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to create article: %v", err))
	}

	slog.Info("article created",
		slog.String("article_id", article.PublicID.String()),
		slog.String("user_id", userID.String()),
	)

	return article, nil
}

// Get は指定公開IDの記事を取得する。
func (s *Service) Get(ctx context.Context, publicID uuid.UUID) (*model.Article, *model.APIError) {
	article, err := s.articleRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find article: %v", err))
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(publicID.String())
	}
	return article, nil
}

// List はフィルタ条件に一致する記事一覧を返す。
func (s *Service) List(ctx context.Context, filter model.ArticleFilter, page model.Pagination) ([]*model.Article, *model.APIError) {
	if apiErr := page.Validate(); apiErr != nil {
		return nil, apiErr
	}

	articles, err := s.articleRepo.List(ctx, filter, page)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to list articles: %v", err))
	}
	return articles, nil
}

// ListByTag は指定タグが付与された記事一覧を返す。タグの存在確認を行う。
func (s *Service) ListByTag(ctx context.Context, tagPublicID uuid.UUID, page model.Pagination) ([]*model.Article, *model.APIError) {
	if apiErr := page.Validate(); apiErr != nil {
		return nil, apiErr
	}

	tag, err := s.tagRepo.FindByPublicID(ctx, tagPublicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find tag: %v", err))
	}
	if tag == nil {
		return nil, model.NewTagNotFoundError(tagPublicID.String())
	}

	articles, err := s.articleRepo.ListByTag(ctx, tagPublicID, page)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to list articles by tag: %v", err))
	}
	return articles, nil
}

// Update は記事を更新する。所有者のみが更新できる。
// nilフィールドは変更せず、本文は保存前にサニタイズされる。
func (s *Service) Update(ctx context.Context, userID, publicID uuid.UUID, input model.UpdateArticle) (*model.Article, *model.APIError) {
	if apiErr := input.Validate(); apiErr != nil {
		return nil, apiErr
	}

	article, apiErr := s.Get(ctx, publicID)
	if apiErr != nil {
		return nil, apiErr
	}

	if apiErr := auth.VerifyResourceOwnership(&article.UserPublicID, userID); apiErr != nil {
		return nil, apiErr
	}

	if input.Title != nil {
		article.Title = *input.Title
	}
	if input.Body != nil {
		article.Body = s.sanitizer.Sanitize(*input.Body)
	}
	if input.Status != nil {
		article.Status = *input.Status
	}
	if input.CategoryPublicID != nil {
		category, err := s.categoryRepo.FindByPublicID(ctx, *input.CategoryPublicID)
		if err != nil {
			return nil, model.NewDatabaseError(fmt.Sprintf("failed to find category: %v", err))
		}
		if category == nil {
			return nil, model.NewCategoryNotFoundError(input.CategoryPublicID.String())
		}
		article.CategoryPublicID = input.CategoryPublicID
	}
	article.UpdatedAt = s.now()

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to update article: %v", err))
	}

	return article, nil
}

// Delete は記事を削除する。所有者のみが削除できる。
func (s *Service) Delete(ctx context.Context, userID, publicID uuid.UUID) *model.APIError {
	article, apiErr := s.Get(ctx, publicID)
	if apiErr != nil {
		return apiErr
	}

	if apiErr := auth.VerifyResourceOwnership(&article.UserPublicID, userID); apiErr != nil {
		return apiErr
	}

	if err := s.articleRepo.DeleteByPublicID(ctx, publicID); err != nil {
		return model.NewDatabaseError(fmt.Sprintf("failed to delete article: %v", err))
	}

	slog.Info("article deleted",
		slog.String("article_id", publicID.String()),
		slog.String("user_id", userID.String()),
	)

	return nil
}

// SetTags は記事のタグ付けを置き換える。所有者のみが変更できる。
// 指定された全タグの存在確認を行う。
func (s *Service) SetTags(ctx context.Context, userID, publicID uuid.UUID, tagPublicIDs []uuid.UUID) ([]*model.Tag, *model.APIError) {
	article, apiErr := s.Get(ctx, publicID)
	if apiErr != nil {
		return nil, apiErr
	}

	if apiErr := auth.VerifyResourceOwnership(&article.UserPublicID, userID); apiErr != nil {
		return nil, apiErr
	}

	for _, tagID := range tagPublicIDs {
		tag, err := s.tagRepo.FindByPublicID(ctx, tagID)
		if err != nil {
			return nil, model.NewDatabaseError(fmt.Sprintf("failed to find tag: %v", err))
		}
		if tag == nil {
			return nil, model.NewTagNotFoundError(tagID.String())
		}
	}

	if err := s.articleRepo.ReplaceTags(ctx, publicID, tagPublicIDs); err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to replace article tags: %v", err))
	}

	return s.Tags(ctx, publicID)
}

// Tags は記事に付与されたタグ一覧を返す。
func (s *Service) Tags(ctx context.Context, publicID uuid.UUID) ([]*model.Tag, *model.APIError) {
	tags, err := s.articleRepo.ListTags(ctx, publicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to list article tags: %v", err))
	}
	return tags, nil
}
