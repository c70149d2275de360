package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/blogd/internal/model"
)

// classifyJWTError はjwtライブラリのエラーをAPIエラーに分類する。
// 分類の優先順位: 期限切れ > 署名不正 > クレーム検証失敗 > 形式不正。
func classifyJWTError(err error) *model.APIError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.NewTokenExpiredError().WithInternal(err.Error())
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return model.NewInvalidSignatureError().WithInternal(err.Error())
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return model.NewTokenValidationError("audience mismatch").WithInternal(err.Error())
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return model.NewTokenValidationError("issuer mismatch").WithInternal(err.Error())
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return model.NewTokenValidationError("token not valid yet").WithInternal(err.Error())
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return model.NewTokenValidationError("token used before issued").WithInternal(err.Error())
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return model.NewTokenValidationError("required claim missing").WithInternal(err.Error())
	default:
		return model.NewInvalidTokenError().WithInternal(err.Error())
	}
}
