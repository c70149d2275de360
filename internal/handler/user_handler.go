package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogd/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Get(ctx context.Context, publicID uuid.UUID) (*model.User, *model.APIError)
	Update(ctx context.Context, principalID, targetID uuid.UUID, input model.UpdateUser) (*model.User, *model.APIError)
	Delete(ctx context.Context, principalID, targetID uuid.UUID) *model.APIError
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// userResponse はユーザー情報のレスポンス。
type userResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// toUserResponse はドメインのUserをレスポンス型に変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:          user.PublicID.String(),
		Name:        user.Name,
		Role:        string(user.Role),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// updateUserRequest はプロフィール更新リクエストのボディ。
type updateUserRequest struct {
	Name *string `json:"name,omitempty"`
}

// GetUser はユーザーの公開プロフィールを取得する。
// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := uuidParam(r, "id")
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	user, apiErr := h.service.Get(r.Context(), userID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Me は認証済みユーザー自身のプロフィールを取得する。
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	user, apiErr := h.service.Get(r.Context(), userID)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateMe は認証済みユーザー自身のプロフィールを更新する。
// PATCH /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	var req updateUserRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	user, apiErr := h.service.Update(r.Context(), userID, userID, model.UpdateUser{Name: req.Name})
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteMe は認証済みユーザー自身のアカウントを削除する。
// DELETE /api/users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := principalID(r)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	if apiErr := h.service.Delete(r.Context(), userID, userID); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
