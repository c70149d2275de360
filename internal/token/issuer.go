package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// Issuer は本サービス自身のアクセストークン・リフレッシュトークンを
// HS256で発行・検証する。トークンはステートレスで、サーバー側に
// 状態を持たないため発行済みトークンの失効はできない。
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	audience      string
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer はIssuerを生成する。
// アクセストークンとリフレッシュトークンには必ず別の秘密鍵を使うこと。
func NewIssuer(accessSecret, refreshSecret, audience, issuer string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}

	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		audience:      audience,
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// GenerateAccessToken はユーザーのアクセストークンを発行する。
// subにユーザー公開ID、roleにユーザーロール、jtiに発行ごとの一意なIDを含む。
func (i *Issuer) GenerateAccessToken(user *model.User, now time.Time) (string, *model.APIError) {
	claims := &AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.PublicID.String(),
			Audience:  jwt.ClaimStrings{i.audience},
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
			ID:        uuid.New().String(),
		},
		Role: user.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", model.NewInternalError(fmt.Sprintf("failed to sign access token: %v", err))
	}

	return signed, nil
}

// GenerateRefreshToken はユーザーのリフレッシュトークンを発行する。
// aud/issはアクセストークンと同じ規約に従い、roleなどの属性クレームは持たない。
func (i *Issuer) GenerateRefreshToken(user *model.User, now time.Time) (string, *model.APIError) {
	claims := &RefreshTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.PublicID.String(),
			Audience:  jwt.ClaimStrings{i.audience},
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", model.NewInternalError(fmt.Sprintf("failed to sign refresh token: %v", err))
	}

	return signed, nil
}

// VerifyAccessToken はアクセストークンを検証し、クレームを返す。
func (i *Issuer) VerifyAccessToken(rawToken string) (*AccessTokenClaims, *model.APIError) {
	claims := &AccessTokenClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(i.audience),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		return i.accessSecret, nil
	})
	if err != nil {
		return nil, classifyJWTError(err)
	}
	if !token.Valid {
		return nil, model.NewInvalidTokenError()
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, model.NewTokenValidationError("access token subject is not a valid id")
	}

	return claims, nil
}

// VerifyRefreshToken はリフレッシュトークンを検証し、クレームを返す。
func (i *Issuer) VerifyRefreshToken(rawToken string) (*RefreshTokenClaims, *model.APIError) {
	claims := &RefreshTokenClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(i.audience),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		return i.refreshSecret, nil
	})
	if err != nil {
		return nil, classifyJWTError(err)
	}
	if !token.Valid {
		return nil, model.NewInvalidTokenError()
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, model.NewTokenValidationError("refresh token subject is not a valid id")
	}

	return claims, nil
}

// SubjectID はクレームのsubをユーザー公開IDとして返す。
// Verify側でパース済みのため失敗しない前提だが、念のためゼロ値を返す。
func SubjectID(subject string) uuid.UUID {
	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// AccessTTL はアクセストークンの有効期間を返す。
func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// RefreshTTL はリフレッシュトークンの有効期間を返す。
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}
