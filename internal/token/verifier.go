package token

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/blogd/internal/model"
)

// Verifier は外部IdPが発行したIDトークンを検証する。
// 検証のたびにKeyFetcherから公開鍵セットを取得し、
// トークンヘッダのkidに対応する鍵でRS256署名を検証する。
type Verifier struct {
	keys      KeyFetcher
	projectID string // 期待するaudience
	issuer    string // 期待するissuer
}

// NewVerifier はVerifierを生成する。
func NewVerifier(keys KeyFetcher, projectID, issuer string) *Verifier {
	return &Verifier{
		keys:      keys,
		projectID: projectID,
		issuer:    issuer,
	}
}

// VerifyIDToken はIDトークンを検証し、クレームを返す。
// 公開鍵の取得失敗は外部サービスエラー、検証失敗は認証エラーとして分類する。
func (v *Verifier) VerifyIDToken(ctx context.Context, rawToken string) (*IDTokenClaims, *model.APIError) {
	keys, err := v.keys.FetchKeys(ctx)
	if err != nil {
		return nil, model.NewExternalServiceError(fmt.Sprintf("failed to fetch signing keys: %v", err))
	}

	claims := &IDTokenClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("token header has no kid")
		}
		pemKey, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("no signing key for kid %q", kid)
		}
		return jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	})
	if err != nil {
		return nil, classifyJWTError(err)
	}
	if !token.Valid {
		return nil, model.NewInvalidTokenError()
	}

	if claims.Subject == "" {
		return nil, model.NewTokenValidationError("id token has no subject")
	}

	return claims, nil
}
