package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogd/internal/middleware"
	"github.com/hitoshi/blogd/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	Create(ctx context.Context, userID *uuid.UUID, input model.NewComment) (*model.Comment, *model.APIError)
	Get(ctx context.Context, publicID uuid.UUID) (*model.Comment, *model.APIError)
	ListByArticle(ctx context.Context, articlePublicID uuid.UUID, page model.Pagination) ([]*model.Comment, *model.APIError)
	Update(ctx context.Context, userID, publicID uuid.UUID, input model.UpdateComment) (*model.Comment, *model.APIError)
	Delete(ctx context.Context, userID, publicID uuid.UUID) *model.APIError
}

// CommentHandler はコメント管理のHTTPハンドラー。
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// commentRequest はコメント投稿リクエストのボディ。
// user_nameはゲスト投稿の表示名で、ログイン投稿では無視される。
type commentRequest struct {
	ArticleID string  `json:"article_id"`
	Body      string  `json:"body"`
	UserName  *string `json:"user_name,omitempty"`
}

// updateCommentRequest はコメント更新リクエストのボディ。
type updateCommentRequest struct {
	Body *string `json:"body,omitempty"`
}

// commentResponse はコメントのレスポンス。
type commentResponse struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	UserID    *string   `json:"user_id,omitempty"`
	UserName  *string   `json:"user_name,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// commentListResponse はコメント一覧のレスポンス。
type commentListResponse struct {
	Comments   []commentResponse `json:"comments"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

// toCommentResponse はドメインのCommentをレスポンス型に変換する。
func toCommentResponse(c *model.Comment) commentResponse {
	resp := commentResponse{
		ID:        c.PublicID.String(),
		ArticleID: c.ArticlePublicID.String(),
		UserName:  c.UserName,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.UserPublicID != nil {
		userID := c.UserPublicID.String()
		resp.UserID = &userID
	}
	return resp
}

// CreateComment はコメントを投稿する。
// 認証済みならログインユーザーのコメント、未認証ならゲストコメントになる。
// POST /api/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	articleID, err := uuid.Parse(req.ArticleID)
	if err != nil {
		writeAPIError(w, model.NewValidationError("article_idの形式が不正です。").WithInternal(err.Error()))
		return
	}

	// 任意認証: プリンシパルがあればログイン投稿として扱う
	var userID *uuid.UUID
	if id, err := middleware.UserIDFromContext(r.Context()); err == nil {
		userID = &id
	}

	created, apiErr := h.service.Create(r.Context(), userID, model.NewComment{
		ArticlePublicID: articleID,
		Body:            req.Body,
		UserName:        req.UserName,
	})
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(created))
}

// GetComment はコメントを取得する。
// GET /api/comments/{id}
func (h *CommentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	commentID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	comment, apiErr := h.service.Get(r.Context(), commentID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponse(comment))
}

// ListComments は記事のコメント一覧を古い順に取得する。
// GET /api/articles/{id}/comments?cursor=xxx&per_page=50
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	articleID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	page, apiErr := parsePagination(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	comments, apiErr := h.service.ListByArticle(r.Context(), articleID, page)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	responses := make([]commentResponse, len(comments))
	for i, c := range comments {
		responses[i] = toCommentResponse(c)
	}

	resp := commentListResponse{Comments: responses}
	if len(comments) == page.PerPage && page.PerPage > 0 {
		resp.NextCursor = comments[len(comments)-1].PublicID.String()
		resp.HasMore = true
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateComment はコメントを更新する。投稿者本人のみが実行できる。
// ゲストコメントは所有者を持たないため更新できない。
// PUT /api/comments/{id}
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	commentID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	var req updateCommentRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	updated, apiErr := h.service.Update(r.Context(), userID, commentID, model.UpdateComment{Body: req.Body})
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponse(updated))
}

// DeleteComment はコメントを削除する。投稿者本人のみが実行できる。
// DELETE /api/comments/{id}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	commentID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	if apiErr := h.service.Delete(r.Context(), userID, commentID); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
