package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogd/internal/model"
)

// multipartMemoryLimit はマルチパート解析時にメモリへ保持する上限バイト数。
const multipartMemoryLimit = 1 << 20

// ImageServiceInterface は画像ハンドラーが必要とするサービスインターフェース。
type ImageServiceInterface interface {
	Upload(ctx context.Context, userID uuid.UUID, input model.NewImage) (*model.Image, *model.APIError)
	Get(ctx context.Context, publicID uuid.UUID) (*model.Image, *model.APIError)
	GetData(ctx context.Context, publicID uuid.UUID) (*model.ImageData, *model.APIError)
	ListByArticle(ctx context.Context, articlePublicID uuid.UUID) ([]*model.Image, *model.APIError)
	Delete(ctx context.Context, userID, publicID uuid.UUID) *model.APIError
}

// ImageMetricsRecorder は画像保存量をメトリクスとして記録するインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type ImageMetricsRecorder interface {
	RecordImageStoredBytes(n int)
}

// ImageHandler は画像管理のHTTPハンドラー。
type ImageHandler struct {
	service ImageServiceInterface
	metrics ImageMetricsRecorder
}

// NewImageHandler はImageHandlerを生成する。metricsはnilでもよい。
func NewImageHandler(service ImageServiceInterface, metrics ImageMetricsRecorder) *ImageHandler {
	return &ImageHandler{service: service, metrics: metrics}
}

// imageResponse は画像メタデータのレスポンス。
type imageResponse struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	URL       *string   `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// toImageResponse はドメインのImageをレスポンス型に変換する。
func toImageResponse(img *model.Image) imageResponse {
	return imageResponse{
		ID:        img.PublicID.String(),
		ArticleID: img.ArticlePublicID.String(),
		Name:      img.Name,
		MimeType:  img.MimeType,
		URL:       img.URL,
		CreatedAt: img.CreatedAt,
		UpdatedAt: img.UpdatedAt,
	}
}

// UploadImage は記事に画像をアップロードする。記事の所有者のみが実行できる。
// multipart/form-dataのfileフィールドに画像本体、任意のurlフィールドに参照元URLを載せる。
// POST /api/articles/{id}/images
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeAPIError(w, model.NewValidationError("multipart/form-data形式でリクエストしてください。").WithInternal(err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, model.NewValidationError("fileフィールドに画像を指定してください。").WithInternal(err.Error()))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeAPIError(w, model.NewValidationError("画像データの読み取りに失敗しました。").WithInternal(err.Error()))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	input := model.NewImage{
		Name:            header.Filename,
		MimeType:        mimeType,
		Data:            data,
		ArticlePublicID: articleID,
	}
	if rawURL := r.FormValue("url"); rawURL != "" {
		input.URL = &rawURL
	}

	created, apiErr := h.service.Upload(r.Context(), userID, input)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordImageStoredBytes(len(data))
	}

	writeJSON(w, http.StatusCreated, toImageResponse(created))
}

// GetImage は画像のメタデータを取得する。
// GET /api/images/{id}
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	imageID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	img, apiErr := h.service.Get(r.Context(), imageID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toImageResponse(img))
}

// GetImageData は画像本体を配信する。
// GET /api/images/{id}/data
func (h *ImageHandler) GetImageData(w http.ResponseWriter, r *http.Request) {
	imageID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	data, apiErr := h.service.GetData(r.Context(), imageID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	w.Header().Set("Content-Type", data.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data.Data)
}

// ListImages は記事に添付された画像の一覧を取得する。
// GET /api/articles/{id}/images
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	articleID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	images, apiErr := h.service.ListByArticle(r.Context(), articleID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	responses := make([]imageResponse, len(images))
	for i, img := range images {
		responses[i] = toImageResponse(img)
	}

	writeJSON(w, http.StatusOK, map[string][]imageResponse{"images": responses})
}

// DeleteImage は画像を削除する。紐付く記事の所有者のみが実行できる。
// DELETE /api/images/{id}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	imageID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	if apiErr := h.service.Delete(r.Context(), userID, imageID); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
