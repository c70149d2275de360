// Package tag はタグ管理のドメインロジックを提供する。
package tag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/repository"
)

// Service はタグ管理のサービス層。
// タグ名はシステム全体で一意で、重複はコンフリクトとして返す。
type Service struct {
	tagRepo repository.TagRepository
	now     func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(tagRepo repository.TagRepository) *Service {
	return &Service{
		tagRepo: tagRepo,
		now:     time.Now,
	}
}

// Create はタグを作成する。
func (s *Service) Create(ctx context.Context, input model.NewTag) (*model.Tag, *model.APIError) {
	if apiErr := input.Validate(); apiErr != nil {
		return nil, apiErr
	}

	now := s.now()
	tag := &model.Tag{
		PublicID:  uuid.New(),
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateNameError(input.Name)
		}
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to create tag: %v", err))
	}

	return tag, nil
}

// Get は指定公開IDのタグを取得する。
func (s *Service) Get(ctx context.Context, publicID uuid.UUID) (*model.Tag, *model.APIError) {
	tag, err := s.tagRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find tag: %v", err))
	}
	if tag == nil {
		return nil, model.NewTagNotFoundError(publicID.String())
	}
	return tag, nil
}

// List はフィルタ条件に一致するタグ一覧を名前昇順で返す。
func (s *Service) List(ctx context.Context, filter model.TagFilter) ([]*model.Tag, *model.APIError) {
	tags, err := s.tagRepo.List(ctx, filter)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to list tags: %v", err))
	}
	return tags, nil
}

// Delete はタグを削除する。記事との紐付けも同時に削除される。
func (s *Service) Delete(ctx context.Context, publicID uuid.UUID) *model.APIError {
	if _, apiErr := s.Get(ctx, publicID); apiErr != nil {
		return apiErr
	}

	if err := s.tagRepo.DeleteByPublicID(ctx, publicID); err != nil {
		return model.NewDatabaseError(fmt.Sprintf("failed to delete tag: %v", err))
	}

	return nil
}
