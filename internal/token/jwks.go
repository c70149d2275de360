package token

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// KeyFetcher はIDトークン検証用の公開鍵セットを取得する。
// 戻り値はkid（鍵ID）からPEM形式の公開鍵（またはX.509証明書）へのマップ。
type KeyFetcher interface {
	FetchKeys(ctx context.Context) (map[string]string, error)
}

// JWKSClient は外部IdPの公開鍵エンドポイントからkid→PEMマップを取得する。
// キャッシュは持たず、検証のたびに取得する。
type JWKSClient struct {
	url    string
	client *http.Client
}

// NewJWKSClient はJWKSClientを生成する。timeoutは取得リクエスト全体の上限。
func NewJWKSClient(url string, timeout time.Duration) *JWKSClient {
	return &JWKSClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// FetchKeys は公開鍵セットを取得する。
func (c *JWKSClient) FetchKeys(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create jwks request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	var keys map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		return nil, fmt.Errorf("failed to decode jwks response: %w", err)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("jwks response contains no keys")
	}

	return keys, nil
}
