package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogd/internal/model"
)

// TagServiceInterface はタグハンドラーが必要とするサービスインターフェース。
type TagServiceInterface interface {
	Create(ctx context.Context, input model.NewTag) (*model.Tag, *model.APIError)
	Get(ctx context.Context, publicID uuid.UUID) (*model.Tag, *model.APIError)
	List(ctx context.Context, filter model.TagFilter) ([]*model.Tag, *model.APIError)
	Delete(ctx context.Context, publicID uuid.UUID) *model.APIError
}

// TagHandler はタグ管理のHTTPハンドラー。
type TagHandler struct {
	service TagServiceInterface
}

// NewTagHandler はTagHandlerを生成する。
func NewTagHandler(service TagServiceInterface) *TagHandler {
	return &TagHandler{service: service}
}

// tagRequest はタグ作成リクエストのボディ。
type tagRequest struct {
	Name string `json:"name"`
}

// tagResponse はタグのレスポンス。
type tagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// toTagResponse はドメインのTagをレスポンス型に変換する。
func toTagResponse(t *model.Tag) tagResponse {
	return tagResponse{
		ID:        t.PublicID.String(),
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// toTagList はタグスライスを一覧レスポンスに変換する。
func toTagList(tags []*model.Tag) map[string][]tagResponse {
	responses := make([]tagResponse, len(tags))
	for i, t := range tags {
		responses[i] = toTagResponse(t)
	}
	return map[string][]tagResponse{"tags": responses}
}

// CreateTag はタグを作成する。
// POST /api/tags
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	created, apiErr := h.service.Create(r.Context(), model.NewTag{Name: req.Name})
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusCreated, toTagResponse(created))
}

// GetTag はタグを取得する。
// GET /api/tags/{id}
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tagID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	tag, apiErr := h.service.Get(r.Context(), tagID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toTagResponse(tag))
}

// ListTags はタグ一覧を取得する。nameクエリで名前の完全一致検索ができる。
// GET /api/tags?name=go
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	filter := model.TagFilter{}
	if name := r.URL.Query().Get("name"); name != "" {
		filter.Name = &name
	}

	tags, apiErr := h.service.List(r.Context(), filter)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toTagList(tags))
}

// DeleteTag はタグを削除する。記事との紐付けも合わせて削除される。
// DELETE /api/tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tagID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	if apiErr := h.service.Delete(r.Context(), tagID); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
