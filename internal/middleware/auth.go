// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認証済みプリンシパルを格納するためのキー。
var principalContextKey = contextKey("principal")

// Principal は認証済みリクエストの主体を表す。
type Principal struct {
	UserID uuid.UUID
	Role   model.UserRole
}

// AccessVerifier はアクセストークンの検証に必要なインターフェース。
// token.Issuerの部分集合として定義する。
type AccessVerifier interface {
	VerifyAccessToken(rawToken string) (*token.AccessTokenClaims, *model.APIError)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// 認証済みプリンシパルをリクエストコンテキストに注入するミドルウェアを返す。
// トークンが欠落または無効なリクエストには401 Unauthorizedを返す。
func NewAuthMiddleware(verifier AccessVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, ok := bearerToken(r)
			if !ok {
				WriteErrorResponse(w, model.NewAuthRequiredError())
				return
			}

			claims, apiErr := verifier.VerifyAccessToken(rawToken)
			if apiErr != nil {
				WriteErrorResponse(w, apiErr)
				return
			}

			principal := Principal{
				UserID: token.SubjectID(claims.Subject),
				Role:   claims.Role,
			}
			if principal.UserID == uuid.Nil {
				WriteErrorResponse(w, model.NewInvalidTokenError())
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalAuthMiddleware はBearerトークンがあれば検証してプリンシパルを注入し、
// なければ匿名のままリクエストを通すミドルウェアを返す。
// ゲスト投稿を許可するエンドポイントで使用する。
// トークンが提示されたのに無効な場合は401を返す。
func NewOptionalAuthMiddleware(verifier AccessVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, apiErr := verifier.VerifyAccessToken(rawToken)
			if apiErr != nil {
				WriteErrorResponse(w, apiErr)
				return
			}

			principal := Principal{
				UserID: token.SubjectID(claims.Subject),
				Role:   claims.Role,
			}
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	rawToken := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if rawToken == "" {
		return "", false
	}
	return rawToken, true
}

// PrincipalFromContext はリクエストコンテキストから認証済みプリンシパルを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	principal, ok := ctx.Value(principalContextKey).(Principal)
	if !ok || principal.UserID == uuid.Nil {
		return Principal{}, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}

// UserIDFromContext はリクエストコンテキストから認証済みユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	principal, err := PrincipalFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return principal.UserID, nil
}

// ContextWithPrincipal はコンテキストにプリンシパルを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}
