// Package user はユーザープロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/auth"
	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/repository"
)

// Service はユーザー管理のサービス層。
// プロフィールの変更・退会は本人のみが行える。
type Service struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// Get は指定公開IDのユーザーを取得する。
func (s *Service) Get(ctx context.Context, publicID uuid.UUID) (*model.User, *model.APIError) {
	user, err := s.userRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find user: %v", err))
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Update はユーザープロフィールを更新する。本人のみが更新できる。
func (s *Service) Update(ctx context.Context, principalID, targetID uuid.UUID, input model.UpdateUser) (*model.User, *model.APIError) {
	if apiErr := auth.VerifySelf(targetID, principalID); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := input.Validate(); apiErr != nil {
		return nil, apiErr
	}

	if input.Name == nil {
		// 変更対象がなければ現状を返す
		return s.Get(ctx, targetID)
	}

	user, err := s.userRepo.Update(ctx, targetID, *input.Name)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to update user: %v", err))
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// Delete はユーザーを退会させる。本人のみが実行できる。
// 所有する記事はCASCADE削除され、コメントは投稿者なしとして残る。
func (s *Service) Delete(ctx context.Context, principalID, targetID uuid.UUID) *model.APIError {
	if apiErr := auth.VerifySelf(targetID, principalID); apiErr != nil {
		return apiErr
	}

	if _, apiErr := s.Get(ctx, targetID); apiErr != nil {
		return apiErr
	}

	if err := s.userRepo.DeleteByPublicID(ctx, targetID); err != nil {
		return model.NewDatabaseError(fmt.Sprintf("failed to delete user: %v", err))
	}

	slog.Info("user deleted", slog.String("user_id", targetID.String()))

	return nil
}
