package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogd/internal/model"
)

// CategoryServiceInterface はカテゴリハンドラーが必要とするサービスインターフェース。
type CategoryServiceInterface interface {
	Create(ctx context.Context, input model.NewCategory) (*model.Category, *model.APIError)
	Get(ctx context.Context, publicID uuid.UUID) (*model.Category, *model.APIError)
	List(ctx context.Context) ([]*model.Category, *model.APIError)
	Update(ctx context.Context, publicID uuid.UUID, input model.UpdateCategory) (*model.Category, *model.APIError)
	Delete(ctx context.Context, publicID uuid.UUID) *model.APIError
}

// CategoryHandler はカテゴリ管理のHTTPハンドラー。
type CategoryHandler struct {
	service CategoryServiceInterface
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// categoryRequest はカテゴリ作成・更新リクエストのボディ。
type categoryRequest struct {
	Name string `json:"name"`
}

// categoryResponse はカテゴリのレスポンス。
type categoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// toCategoryResponse はドメインのCategoryをレスポンス型に変換する。
func toCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{
		ID:        c.PublicID.String(),
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CreateCategory はカテゴリを作成する。
// POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	created, apiErr := h.service.Create(r.Context(), model.NewCategory{Name: req.Name})
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

// GetCategory はカテゴリを取得する。
// GET /api/categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	category, apiErr := h.service.Get(r.Context(), categoryID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

// ListCategories はカテゴリ一覧を取得する。
// GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, apiErr := h.service.List(r.Context())
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	responses := make([]categoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = toCategoryResponse(c)
	}

	writeJSON(w, http.StatusOK, map[string][]categoryResponse{"categories": responses})
}

// UpdateCategory はカテゴリ名を変更する。
// PUT /api/categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	var req categoryRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	updated, apiErr := h.service.Update(r.Context(), categoryID, model.UpdateCategory{Name: req.Name})
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

// DeleteCategory はカテゴリを削除する。
// 紐付く記事のカテゴリは外部キーによりNULLに戻る。
// DELETE /api/categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	if apiErr := h.service.Delete(r.Context(), categoryID); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
