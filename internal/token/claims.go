// Package token はトークンの発行と検証を提供する。
//
// 外部IdPが発行するIDトークンの検証（JWKS取得 + RS256署名検証）と、
// 本サービス自身が発行するアクセストークン・リフレッシュトークン
// （HS256署名、ステートレス）の発行・検証を担う。
package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/blogd/internal/model"
)

// IDTokenClaims は外部IdPが発行するIDトークンのクレーム。
// 検証のみ行い、本サービスがこの形式のトークンを発行することはない。
type IDTokenClaims struct {
	jwt.RegisteredClaims

	AuthTime      int64  `json:"auth_time"`
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// AccessTokenClaims は本サービスが発行するアクセストークンのクレーム。
// subにはユーザーの公開ID、jtiには発行ごとに一意なIDが入る。
type AccessTokenClaims struct {
	jwt.RegisteredClaims

	Role model.UserRole `json:"role"`
}

// RefreshTokenClaims は本サービスが発行するリフレッシュトークンのクレーム。
// アクセストークンの再発行にのみ使用するため登録クレームのみを持つ。
// aud/issはアクセストークンと同じ値で発行・検証される。
type RefreshTokenClaims struct {
	jwt.RegisteredClaims
}
