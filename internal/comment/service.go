// Package comment はコメント管理のドメインロジックを提供する。
package comment

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

// Service はコメント管理のサービス層。
// ログインユーザーとゲストの両方が投稿でき、変更・削除は所有者のみ行える。
type Service struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	sanitizer   security.ContentSanitizerService
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	commentRepo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		sanitizer:   sanitizer,
		now:         time.Now,
	}
}

// Create はコメントを投稿する。本文は保存前にサニタイズされる。
// userIDがnilの場合はゲスト投稿として扱い、入力のUserNameを表示名に使う。
// ログインユーザーの場合は入力のUserNameを無視する。
func (s *Service) Create(ctx context.Context, userID *uuid.UUID, input model.NewComment) (*model.Comment, *model.APIError) {
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

	now := s.now()
	comment := &model.Comment{
		PublicID:        uuid.New(),
		UserPublicID:    userID,
		ArticlePublicID: input.ArticlePublicID,
		Body:            s.sanitizer.Sanitize(input.Body),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if userID == nil {
		comment.UserName = input.UserName
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to create comment: %v", err))
	}

	slog.Info("comment created",
		slog.String("comment_id", comment.PublicID.String()),
		slog.String("article_id", input.ArticlePublicID.String()),
		slog.Bool("guest", userID == nil),
	)

	return comment, nil
}

// Get は指定公開IDのコメントを取得する。
func (s *Service) Get(ctx context.Context, publicID uuid.UUID) (*model.Comment, *model.APIError) {
	comment, err := s.commentRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find comment: %v", err))
	}
	if comment == nil {
		return nil, model.NewCommentNotFoundError(publicID.String())
	}
	return comment, nil
}

// ListByArticle は記事のコメント一覧を返す。記事の存在確認を行う。
func (s *Service) ListByArticle(ctx context.Context, articlePublicID uuid.UUID, page model.Pagination) ([]*model.Comment, *model.APIError) {
	if apiErr := page.Validate(); apiErr != nil {
		return nil, apiErr
	}

	article, err := s.articleRepo.FindByPublicID(ctx, articlePublicID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find article: %v", err))
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articlePublicID.String())
	}

	comments, err := s.commentRepo.ListByArticle(ctx, articlePublicID, page)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to list comments: %v", err))
	}
	return comments, nil
}

// Update はコメントを更新する。所有者のみが更新できる。
// ゲストコメントは所有者が存在しないため常に所有権違反となる。
func (s *Service) Update(ctx context.Context, userID, publicID uuid.UUID, input model.UpdateComment) (*model.Comment, *model.APIError) {
	if apiErr := input.Validate(); apiErr != nil {
		return nil, apiErr
	}

	comment, apiErr := s.Get(ctx, publicID)
	if apiErr != nil {
		return nil, apiErr
	}

	if apiErr := auth.VerifyResourceOwnership(comment.UserPublicID, userID); apiErr != nil {
		return nil, apiErr
	}

	if input.Body != nil {
		comment.Body = s.sanitizer.Sanitize(*input.Body)
	}
	comment.UpdatedAt = s.now()

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to update comment: %v", err))
	}

	return comment, nil
}

// Delete はコメントを削除する。所有者のみが削除できる。
func (s *Service) Delete(ctx context.Context, userID, publicID uuid.UUID) *model.APIError {
	comment, apiErr := s.Get(ctx, publicID)
	if apiErr != nil {
		return apiErr
	}

	if apiErr := auth.VerifyResourceOwnership(comment.UserPublicID, userID); apiErr != nil {
		return apiErr
	}

	if err := s.commentRepo.DeleteByPublicID(ctx, publicID); err != nil {
		return model.NewDatabaseError(fmt.Sprintf("failed to delete comment: %v", err))
	}

	return nil
}
