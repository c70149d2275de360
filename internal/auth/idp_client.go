package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// IdPCredential は外部IdPの認証結果を表す。
type IdPCredential struct {
	IDToken      string
	RefreshToken string
	ExpiresIn    string
	LocalID      string
	Email        string
}

// IdPProvider は外部IdPのパスワード認証インターフェース。
type IdPProvider interface {
	// SignUp は外部IdPに新規アカウントを作成し、IDトークンを取得する。
	SignUp(ctx context.Context, email, password string) (*IdPCredential, error)
	// SignIn は外部IdPでパスワード認証し、IDトークンを取得する。
	SignIn(ctx context.Context, email, password string) (*IdPCredential, error)
}

// IdPClientConfig はIdPClientの設定。
type IdPClientConfig struct {
	SignUpURL string
	SignInURL string
	APIKey    string
	Timeout   time.Duration
}

// IdPClient は外部IdPのREST APIによるメールアドレス・パスワード認証を提供する。
// ユーザーの資格情報は外部IdPのみが保持し、本サービスはパスワードを保存しない。
type IdPClient struct {
	config IdPClientConfig
	client *http.Client
}

// NewIdPClient はIdPClientを生成する。
func NewIdPClient(config IdPClientConfig) *IdPClient {
	return &IdPClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// idpAuthRequest は外部IdPの認証エンドポイントへのリクエストボディ。
type idpAuthRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// idpAuthResponse は外部IdPの認証エンドポイントのレスポンス。
type idpAuthResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

// idpErrorResponse は外部IdPのエラーレスポンス。
type idpErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// IdPAuthError は外部IdPが返した認証エラーを表す。
// Messageには"EMAIL_EXISTS"、"INVALID_PASSWORD"等のIdP定義のコードが入る。
type IdPAuthError struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *IdPAuthError) Error() string {
	return fmt.Sprintf("idp auth failed with status %d: %s", e.StatusCode, e.Message)
}

// SignUp は外部IdPに新規アカウントを作成し、IDトークンを取得する。
func (c *IdPClient) SignUp(ctx context.Context, email, password string) (*IdPCredential, error) {
	return c.authenticate(ctx, c.config.SignUpURL, email, password)
}

// SignIn は外部IdPでパスワード認証し、IDトークンを取得する。
func (c *IdPClient) SignIn(ctx context.Context, email, password string) (*IdPCredential, error) {
	return c.authenticate(ctx, c.config.SignInURL, email, password)
}

// authenticate は外部IdPの認証エンドポイントを呼び出す。
func (c *IdPClient) authenticate(ctx context.Context, endpoint, email, password string) (*IdPCredential, error) {
	reqBody, err := json.Marshal(idpAuthRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal auth request: %w", err)
	}

	url := endpoint + "?key=" + c.config.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// 4xxはIdP定義のエラーコード付きで返る（EMAIL_EXISTS等）
		var errResp idpErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, &IdPAuthError{StatusCode: resp.StatusCode, Message: errResp.Error.Message}
		}
		return nil, fmt.Errorf("idp returned status %d: %s", resp.StatusCode, string(body))
	}

	var authResp idpAuthResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return nil, fmt.Errorf("failed to parse auth response: %w", err)
	}

	if authResp.IDToken == "" {
		return nil, fmt.Errorf("empty id token in auth response")
	}

	return &IdPCredential{
		IDToken:      authResp.IDToken,
		RefreshToken: authResp.RefreshToken,
		ExpiresIn:    authResp.ExpiresIn,
		LocalID:      authResp.LocalID,
		Email:        authResp.Email,
	}, nil
}

// compile-time interface check
var _ IdPProvider = (*IdPClient)(nil)
