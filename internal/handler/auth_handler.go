package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/blogd/internal/auth"
	"github.com/hitoshi/blogd/internal/model"
)

// refreshCookieName はリフレッシュトークンを保持するHttpOnly Cookieの名前。
const refreshCookieName = "refresh_token"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password string) (*auth.AuthResult, *model.APIError)
	SignIn(ctx context.Context, email, password string) (*auth.AuthResult, *model.APIError)
	Refresh(ctx context.Context, rawRefreshToken string) (*auth.AuthResult, *model.APIError)
}

// AuthMetricsRecorder は認証試行をメトリクスとして記録するインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type AuthMetricsRecorder interface {
	RecordAuthAttempt(operation string, success bool)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure    bool
	CookieDomain    string
	RefreshTokenTTL time.Duration // リフレッシュCookieの有効期間
}

// AuthHandler は認証関連のHTTPハンドラー。
// アクセストークンはレスポンスボディ、リフレッシュトークンはHttpOnly Cookieで返す。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics AuthMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics AuthMetricsRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// --- リクエスト・レスポンス型 ---

// credentialsRequest はメールアドレス・パスワード認証のリクエストボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// validate は入力の形式を確認する。強度検証はIdPに委ねる。
func (req credentialsRequest) validate() *model.APIError {
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return model.NewValidationError("メールアドレスの形式が不正です。")
	}
	if req.Password == "" {
		return model.NewValidationError("パスワードを指定してください。")
	}
	return nil
}

// authResponse は認証成功時のレスポンスボディ。
// リフレッシュトークンはボディに含めず、HttpOnly Cookieでのみ返す。
type authResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        userResponse `json:"user"`
}

// SignUp は新規ユーザーを登録する。
// POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, "signup", h.service.SignUp)
}

// SignIn は既存ユーザーを認証する。
// POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, "signin", h.service.SignIn)
}

// authenticate はSignUp/SignIn共通の認証フローを処理する。
func (h *AuthHandler) authenticate(w http.ResponseWriter, r *http.Request, operation string, fn func(ctx context.Context, email, password string) (*auth.AuthResult, *model.APIError)) {
	var req credentialsRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}
	if apiErr := req.validate(); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	result, apiErr := fn(r.Context(), req.Email, req.Password)
	if h.metrics != nil {
		h.metrics.RecordAuthAttempt(operation, apiErr == nil)
	}
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeJSON(w, http.StatusOK, authResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresIn,
		User:        toUserResponse(result.User),
	})
}

// Refresh はリフレッシュトークンCookieからトークンペアを再発行する。
// リフレッシュトークンはローテーションされ、新しいCookieに置き換わる。
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIError(w, model.NewAuthRequiredError())
		return
	}

	rawToken, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		writeAPIError(w, model.NewInvalidTokenError().WithInternal(err.Error()))
		return
	}

	result, apiErr := h.service.Refresh(r.Context(), rawToken)
	if h.metrics != nil {
		h.metrics.RecordAuthAttempt("refresh", apiErr == nil)
	}
	if apiErr != nil {
		// 無効なリフレッシュトークンはCookieごと破棄する
		h.clearRefreshCookie(w)
		writeAPIError(w, apiErr)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeJSON(w, http.StatusOK, authResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresIn,
		User:        toUserResponse(result.User),
	})
}

// SignOut はリフレッシュトークンCookieを破棄する。
// アクセストークンはステートレスなため、失効は有効期限切れに委ねる。
// POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// setRefreshCookie はリフレッシュトークンをHttpOnly Cookieに設定する。
func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    url.QueryEscape(refreshToken),
		Path:     "/api/auth",
		Domain:   h.config.CookieDomain,
		MaxAge:   int(h.config.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie はリフレッシュトークンCookieを削除する。
func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
