// Package category はカテゴリ管理のドメインロジックを提供する。
package category

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/repository"
)

// Service はカテゴリ管理のサービス層。
// カテゴリ名はシステム全体で一意で、重複はコンフリクトとして返す。
type Service struct {
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(categoryRepo repository.CategoryRepository) *Service {
	return &Service{
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// Create はカテゴリを作成する。
func (s *Service) Create(ctx context.Context, input model.NewCategory) (*model.Category, *model.APIError) {
	if apiErr := input.Validate(); apiErr != nil {
		return nil, apiErr
	}

	now := s.now()
	category := &model.Category{
		PublicID:  uuid.New(),
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateNameError(input.Name)
		}
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to create category: %v", err))
	}

	return category, nil
}

// Get は指定公開IDのカテゴリを取得する。
func (s *Service) Get(ctx context.Context, publicID uuid.UUID) (*model.Category, *model.APIError) {
	category, err := s.categoryRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find category: %v", err))
	}
	if category == nil {
		return nil, model.NewCategoryNotFoundError(publicID.String())
	}
	return category, nil
}

// List は全カテゴリを名前昇順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Category, *model.APIError) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to list categories: %v", err))
	}
	return categories, nil
}

// Update はカテゴリ名を変更する。
func (s *Service) Update(ctx context.Context, publicID uuid.UUID, input model.UpdateCategory) (*model.Category, *model.APIError) {
	if apiErr := input.Validate(); apiErr != nil {
		return nil, apiErr
	}

	category, apiErr := s.Get(ctx, publicID)
	if apiErr != nil {
		return nil, apiErr
	}

	category.Name = input.Name
	category.UpdatedAt = s.now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateNameError(input.Name)
		}
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to update category: %v", err))
	}

	return category, nil
}

// Delete はカテゴリを削除する。参照していた記事のカテゴリは未分類になる。
func (s *Service) Delete(ctx context.Context, publicID uuid.UUID) *model.APIError {
	if _, apiErr := s.Get(ctx, publicID); apiErr != nil {
		return apiErr
	}

	if err := s.categoryRepo.DeleteByPublicID(ctx, publicID); err != nil {
		return model.NewDatabaseError(fmt.Sprintf("failed to delete category: %v", err))
	}

	return nil
}
