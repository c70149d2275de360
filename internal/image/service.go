// Package image は記事添付画像のドメインロジックを提供する。
package image

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

// Service は画像管理のサービス層。
// 画像の所有権は紐付く記事の所有者から導出される。
type Service struct {
	imageRepo   repository.ImageRepository
	articleRepo repository.ArticleRepository
	urlGuard    security.URLGuardService
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	imageRepo repository.ImageRepository,
	articleRepo repository.ArticleRepository,
	urlGuard security.URLGuardService,
) *Service {
	return &Service{
		imageRepo:   imageRepo,
		articleRepo: articleRepo,
		urlGuard:    urlGuard,
		now:         time.Now,
	}
}

// Upload は画像を記事に添付する。記事の所有者のみがアップロードできる。
// 外部参照URLが指定された場合はSSRF防止の事前検証を行う。
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, input model.NewImage) (*model.Image, *model.APIError) {
	if apiErr := input.Validate(); apiErr != nil {
		return nil, apiErr
	}

	article, err := s.articleRepo.FindByPublicID(ctx, input.ArticlePublicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find article: %v", err))
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(input.ArticlePublicID.String())
	}

	if apiErr := auth.VerifyResourceOwnership(&article.UserPublicID, userID); apiErr != nil {
		return nil, apiErr
	}

	if input.URL != nil {
		if err := s.urlGuard.ValidateURL(*input.URL); err != nil {
			return nil, model.NewValidationError("画像URLが不正です。").WithInternal(err.Error())
		}
	}

	storageType := input.StorageType
	if storageType == "" {
		storageType = model.StorageDatabase
	}

	now := s.now()
	image := &model.Image{
		PublicID:        uuid.New(),
		Name:            input.Name,
		MimeType:        input.MimeType,
		URL:             input.URL,
		StorageType:     storageType,
		ArticlePublicID: input.ArticlePublicID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.imageRepo.Create(ctx, image, input.Data); err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to create image: %v", err))
	}

	slog.Info("image uploaded",
		slog.String("image_id", image.PublicID.String()),
		slog.String("article_id", input.ArticlePublicID.String()),
		slog.Int("size_bytes", len(input.Data)),
	)

	return image, nil
}

// Get は指定公開IDの画像メタデータを取得する。
func (s *Service) Get(ctx context.Context, publicID uuid.UUID) (*model.Image, *model.APIError) {
	image, err := s.imageRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find image: %v", err))
	}
	if image == nil {
		return nil, model.NewImageNotFoundError(publicID.String())
	}
	return image, nil
}

// GetData は指定公開IDの画像バイナリを配信用に取得する。
func (s *Service) GetData(ctx context.Context, publicID uuid.UUID) (*model.ImageData, *model.APIError) {
	data, err := s.imageRepo.FindDataByPublicID(ctx, publicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find image data: %v", err))
	}
	if data == nil {
		return nil, model.NewImageNotFoundError(publicID.String())
	}
	return data, nil
}

// ListByArticle は記事の画像メタデータ一覧を返す。記事の存在確認を行う。
func (s *Service) ListByArticle(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Image, *model.APIError) {
	article, err := s.articleRepo.FindByPublicID(ctx, articlePublicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find article: %v", err))
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articlePublicID.String())
	}

	images, err := s.imageRepo.ListByArticle(ctx, articlePublicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to list images: %v", err))
	}
	return images, nil
}

// Delete は画像を削除する。紐付く記事の所有者のみが削除できる。
// 所有者の解決は1回のJOIN読み出しで行う。
func (s *Service) Delete(ctx context.Context, userID, publicID uuid.UUID) *model.APIError {
	withOwner, err := s.imageRepo.FindWithOwner(ctx, publicID)
	if err != nil {
		return model.NewDatabaseError(fmt.Sprintf("failed to find image with owner: %v", err))
	}
	if withOwner == nil {
		return model.NewImageNotFoundError(publicID.String())
	}

	if apiErr := auth.VerifyResourceOwnership(&withOwner.ArticleOwnerID, userID); apiErr != nil {
		return apiErr
	}

	if err := s.imageRepo.DeleteByPublicID(ctx, publicID); err != nil {
		return model.NewDatabaseError(fmt.Sprintf("failed to delete image: %v", err))
	}

	return nil
}
