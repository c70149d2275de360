package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogd/internal/article"
	"github.com/hitoshi/blogd/internal/model"
)

// ArticleServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, input model.NewArticle) (*model.Article, *model.APIError)
	Get(ctx context.Context, publicID uuid.UUID) (*model.Article, *model.APIError)
	List(ctx context.Context, filter model.ArticleFilter, page model.Pagination) ([]*model.Article, *model.APIError)
	ListByTag(ctx context.Context, tagPublicID uuid.UUID, page model.Pagination) ([]*model.Article, *model.APIError)
	Update(ctx context.Context, userID, publicID uuid.UUID, input model.UpdateArticle) (*model.Article, *model.APIError)
	Delete(ctx context.Context, userID, publicID uuid.UUID) *model.APIError
	SetTags(ctx context.Context, userID, publicID uuid.UUID, tagPublicIDs []uuid.UUID) ([]*model.Tag, *model.APIError)
	Tags(ctx context.Context, publicID uuid.UUID) ([]*model.Tag, *model.APIError)
}

// ArticleHandler は記事管理のHTTPハンドラー。
type ArticleHandler struct {
	service ArticleServiceInterface
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// articleRequest は記事作成リクエストのボディ。
type articleRequest struct {
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	Status     string  `json:"status"`
	CategoryID *string `json:"category_id,omitempty"`
}

// updateArticleRequest は記事更新リクエストのボディ。nilフィールドは変更しない。
type updateArticleRequest struct {
	Title      *string `json:"title,omitempty"`
	Body       *string `json:"body,omitempty"`
	Status     *string `json:"status,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
}

// articleSummaryResponse は記事一覧のサマリーレスポンス。本文の代わりに抜粋を返す。
type articleSummaryResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Status     string    `json:"status"`
	CategoryID *string   `json:"category_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// articleDetailResponse は記事詳細のレスポンス。サニタイズ済みHTML本文を含む。
type articleDetailResponse struct {
	articleSummaryResponse
	Body string `json:"body"`
}

// articleListResponse は記事一覧のレスポンス。
type articleListResponse struct {
	Articles   []articleSummaryResponse `json:"articles"`
	NextCursor string                   `json:"next_cursor,omitempty"`
	HasMore    bool                     `json:"has_more"`
}

// toArticleSummary はドメインのArticleをサマリーレスポンスに変換する。
func toArticleSummary(a *model.Article) articleSummaryResponse {
	resp := articleSummaryResponse{
		ID:        a.PublicID.String(),
		UserID:    a.UserPublicID.String(),
		Title:     a.Title,
		Excerpt:   article.Excerpt(a.Body, article.DefaultExcerptRunes),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.CategoryPublicID != nil {
		categoryID := a.CategoryPublicID.String()
		resp.CategoryID = &categoryID
	}
	return resp
}

// toArticleDetail はドメインのArticleを詳細レスポンスに変換する。
func toArticleDetail(a *model.Article) articleDetailResponse {
	return articleDetailResponse{
		articleSummaryResponse: toArticleSummary(a),
		Body:                   a.Body,
	}
}

// toArticleList は記事スライスを一覧レスポンスに変換する。
func toArticleList(articles []*model.Article, perPage int) articleListResponse {
	summaries := make([]articleSummaryResponse, len(articles))
	for i, a := range articles {
		summaries[i] = toArticleSummary(a)
	}

	resp := articleListResponse{Articles: summaries}
	if len(articles) == perPage && perPage > 0 {
		resp.NextCursor = articles[len(articles)-1].PublicID.String()
		resp.HasMore = true
	}
	return resp
}

// parseOptionalUUID はnil許容のUUID文字列をパースする。
func parseOptionalUUID(raw *string, field string) (*uuid.UUID, *model.APIError) {
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, model.NewValidationError(field + "の形式が不正です。").WithInternal(err.Error())
	}
	return &id, nil
}

// CreateArticle は記事を作成する。
// POST /api/articles
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	var req articleRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	categoryID, apiErr := parseOptionalUUID(req.CategoryID, "category_id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	created, apiErr := h.service.Create(r.Context(), userID, model.NewArticle{
		Title:            req.Title,
		Body:             req.Body,
		Status:           model.ArticleStatus(req.Status),
		CategoryPublicID: categoryID,
	})
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusCreated, toArticleDetail(created))
}

// GetArticle は記事詳細を取得する。
// GET /api/articles/{id}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	articleID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	found, apiErr := h.service.Get(r.Context(), articleID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toArticleDetail(found))
}

// ListArticles は記事一覧をフィルタ・ページネーション付きで取得する。
// 絞り込みはstatus、user_id、category_idのクエリパラメータで行う。
// statusの指定がない場合は公開記事のみを返す。
// GET /api/articles?status=published&user_id=xxx&category_id=yyy&cursor=zzz&per_page=50
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	page, apiErr := parsePagination(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	filter := model.ArticleFilter{}

	statusStr := r.URL.Query().Get("status")
	if statusStr == "" {
		statusStr = string(model.StatusPublished)
	}
	status, ok := model.ParseArticleStatus(statusStr)
	if !ok {
		writeAPIError(w, model.NewValidationError("記事のステータスが不正です。"))
		return
	}
	filter.Status = &status

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			writeAPIError(w, model.NewValidationError("user_idの形式が不正です。").WithInternal(err.Error()))
			return
		}
		filter.UserPublicID = &userID
	}

	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			writeAPIError(w, model.NewValidationError("category_idの形式が不正です。").WithInternal(err.Error()))
			return
		}
		filter.CategoryPublicID = &categoryID
	}

	articles, apiErr := h.service.List(r.Context(), filter, page)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toArticleList(articles, page.PerPage))
}

// ListArticlesByTag はタグ付けされた記事の一覧を取得する。
// GET /api/tags/{id}/articles
func (h *ArticleHandler) ListArticlesByTag(w http.ResponseWriter, r *http.Request) {
	tagID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	page, apiErr := parsePagination(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	articles, apiErr := h.service.ListByTag(r.Context(), tagID, page)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toArticleList(articles, page.PerPage))
}

// UpdateArticle は記事を更新する。所有者のみが実行できる。
// PUT /api/articles/{id}
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	articleID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	var req updateArticleRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	categoryID, apiErr := parseOptionalUUID(req.CategoryID, "category_id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	input := model.UpdateArticle{
		Title:            req.Title,
		Body:             req.Body,
		CategoryPublicID: categoryID,
	}
	if req.Status != nil {
		status := model.ArticleStatus(*req.Status)
		input.Status = &status
	}

	updated, apiErr := h.service.Update(r.Context(), userID, articleID, input)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toArticleDetail(updated))
}

// DeleteArticle は記事を削除する。所有者のみが実行できる。
// DELETE /api/articles/{id}
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	articleID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	if apiErr := h.service.Delete(r.Context(), userID, articleID); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setTagsRequest はタグ一括設定リクエストのボディ。
type setTagsRequest struct {
	TagIDs []string `json:"tag_ids"`
}

// SetArticleTags は記事のタグ集合を置き換える。所有者のみが実行できる。
// PUT /api/articles/{id}/tags
func (h *ArticleHandler) SetArticleTags(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	articleID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	var req setTagsRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	tagIDs := make([]uuid.UUID, len(req.TagIDs))
	for i, raw := range req.TagIDs {
		tagID, err := uuid.Parse(raw)
		if err != nil {
			writeAPIError(w, model.NewValidationError("tag_idsの形式が不正です。").WithInternal(err.Error()))
			return
		}
		tagIDs[i] = tagID
	}

	tags, apiErr := h.service.SetTags(r.Context(), userID, articleID, tagIDs)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toTagList(tags))
}

// ListArticleTags は記事に付与されたタグの一覧を取得する。
// GET /api/articles/{id}/tags
func (h *ArticleHandler) ListArticleTags(w http.ResponseWriter, r *http.Request) {
	articleID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	tags, apiErr := h.service.Tags(r.Context(), articleID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toTagList(tags))
}
