package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/token"
)

func newTestIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(
		"access-secret-for-tests",
		"refresh-secret-for-tests",
		"blogd-test",
		"https://blogd.test",
		time.Hour,
		720*time.Hour,
	)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}
	return issuer
}

func issueAccessToken(t *testing.T, issuer *token.Issuer, user *model.User) string {
	t.Helper()
	accessToken, apiErr := issuer.GenerateAccessToken(user, time.Now())
	if apiErr != nil {
		t.Fatalf("failed to issue access token: %v", apiErr)
	}
	return accessToken
}

// TestAuthMiddleware_ValidToken は有効なBearerトークンでプリンシパルが注入されることを検証する。
func TestAuthMiddleware_ValidToken(t *testing.T) {
	issuer := newTestIssuer(t)
	user := &model.User{PublicID: uuid.New(), Role: model.RoleAdmin, IsActive: true}
	accessToken := issueAccessToken(t, issuer, user)

	var gotPrincipal Principal
	handler := NewAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := PrincipalFromContext(r.Context())
		if err != nil {
			t.Fatalf("principal not in context: %v", err)
		}
		gotPrincipal = principal
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPrincipal.UserID != user.PublicID {
		t.Errorf("user_id = %v, want %v", gotPrincipal.UserID, user.PublicID)
	}
	if gotPrincipal.Role != model.RoleAdmin {
		t.Errorf("role = %v, want %v", gotPrincipal.Role, model.RoleAdmin)
	}
}

// TestAuthMiddleware_MissingHeader はAuthorizationヘッダー欠落時に401が返ることを検証する。
func TestAuthMiddleware_MissingHeader(t *testing.T) {
	issuer := newTestIssuer(t)

	handler := NewAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestAuthMiddleware_MalformedHeader はBearer形式でないヘッダーが401になることを検証する。
func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	issuer := newTestIssuer(t)

	handler := NewAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	tests := []string{
		"Basic dXNlcjpwYXNz",
		"Bearer",
		"Bearer ",
		"token-without-scheme",
	}
	for _, header := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, w.Code, http.StatusUnauthorized)
		}
	}
}

// TestAuthMiddleware_ExpiredToken は期限切れトークンで401が返ることを検証する。
func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t)
	user := &model.User{PublicID: uuid.New(), Role: model.RoleUser, IsActive: true}

	// 2時間前に発行されたトークン（TTLは1時間）
	accessToken, apiErr := issuer.GenerateAccessToken(user, time.Now().Add(-2*time.Hour))
	if apiErr != nil {
		t.Fatalf("failed to issue access token: %v", apiErr)
	}

	handler := NewAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestOptionalAuthMiddleware_NoToken はトークンなしでも匿名として通過することを検証する。
func TestOptionalAuthMiddleware_NoToken(t *testing.T) {
	issuer := newTestIssuer(t)

	called := false
	handler := NewOptionalAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, err := PrincipalFromContext(r.Context()); err == nil {
			t.Error("anonymous request should not carry a principal")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/comments", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Fatal("handler should be called for anonymous request")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// TestOptionalAuthMiddleware_InvalidToken は提示されたトークンが無効なら401になることを検証する。
func TestOptionalAuthMiddleware_InvalidToken(t *testing.T) {
	issuer := newTestIssuer(t)

	handler := NewOptionalAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/comments", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestPrincipalFromContext_NotSet はプリンシパル未設定のコンテキストでエラーになることを検証する。
func TestPrincipalFromContext_NotSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := PrincipalFromContext(req.Context()); err == nil {
		t.Error("expected error for context without principal")
	}
}

// TestContextWithPrincipal_RoundTrip はコンテキストへの注入と取得が往復することを検証する。
func TestContextWithPrincipal_RoundTrip(t *testing.T) {
	principal := Principal{UserID: uuid.New(), Role: model.RoleUser}
	ctx := ContextWithPrincipal(httptest.NewRequest(http.MethodGet, "/", nil).Context(), principal)

	got, err := PrincipalFromContext(ctx)
	if err != nil {
		t.Fatalf("PrincipalFromContext failed: %v", err)
	}
	if got.UserID != principal.UserID {
		t.Errorf("user_id = %v, want %v", got.UserID, principal.UserID)
	}

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext failed: %v", err)
	}
	if userID != principal.UserID {
		t.Errorf("user_id = %v, want %v", userID, principal.UserID)
	}
}
