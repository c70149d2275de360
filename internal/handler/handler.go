// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/blogd/internal/logger"
	"github.com/hitoshi/blogd/internal/middleware"
	"github.com/hitoshi/blogd/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIError はAPIErrorをログに記録し、統一フォーマットで書き込む。
// ステータスコードはエラーカテゴリから導出される。
func writeAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	logger.LogAPIError(apiErr)
	middleware.WriteErrorResponse(w, apiErr)
}

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
func decodeJSONBody(r *http.Request, dst any) *model.APIError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewInvalidRequestError().WithInternal(err.Error())
	}
	return nil
}

// uuidParam はURLパラメータをUUIDとして取り出す。
func uuidParam(r *http.Request, name string) (uuid.UUID, *model.APIError) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewValidationError("IDの形式が不正です。").WithInternal(err.Error())
	}
	return id, nil
}

// parsePagination はクエリパラメータからページネーション入力を組み立てる。
// cursorは直前ページ最終行の公開ID、per_pageは1〜100。
func parsePagination(r *http.Request) (model.Pagination, *model.APIError) {
	page := model.DefaultPagination()

	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor, err := uuid.Parse(raw)
		if err != nil {
			return page, model.NewValidationError("cursorの形式が不正です。").WithInternal(err.Error())
		}
		page.Cursor = &cursor
	}

	if raw := r.URL.Query().Get("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			return page, model.NewValidationError("per_pageは整数で指定してください。").WithInternal(err.Error())
		}
		page.PerPage = perPage
	}

	if apiErr := page.Validate(); apiErr != nil {
		return page, apiErr
	}
	return page, nil
}

// principalID はリクエストコンテキストから認証済みユーザーIDを取り出す。
// 認証ミドルウェア配下でのみ成功する。
func principalID(r *http.Request) (uuid.UUID, *model.APIError) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		return uuid.Nil, model.NewAuthRequiredError().WithInternal(err.Error())
	}
	return userID, nil
}
