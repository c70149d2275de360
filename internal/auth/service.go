// Package auth は外部IdP連携による認証とトークン発行、所有権検証を提供する。
//
// パスワードの保管と照合は外部IdPに完全に委譲し、本サービスは
// IdPが発行したIDトークンを検証した上で自前のアクセストークン・
// リフレッシュトークンを発行する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/repository"
	"github.com/hitoshi/blogd/internal/token"
)

// IdPProviderName はidentitiesテーブルに記録するプロバイダー識別子。
const IdPProviderName = "firebase"

// IDTokenVerifier は外部IdPのIDトークン検証インターフェース。
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, rawToken string) (*token.IDTokenClaims, *model.APIError)
}

// TokenIssuer は本サービスのトークン発行インターフェース。
type TokenIssuer interface {
	GenerateAccessToken(user *model.User, now time.Time) (string, *model.APIError)
	GenerateRefreshToken(user *model.User, now time.Time) (string, *model.APIError)
	VerifyRefreshToken(rawToken string) (*token.RefreshTokenClaims, *model.APIError)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// EmailProtector はメールアドレスの保存時保護インターフェース。
type EmailProtector interface {
	Encrypt(plaintext string) (ciphertext, nonce []byte, err error)
	Hash(plaintext string) []byte
}

// AuthResult は認証成功時の結果を表す。
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // アクセストークンの有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	idp      IdPProvider
	verifier IDTokenVerifier
	issuer   TokenIssuer
	userRepo repository.UserRepository
	emails   EmailProtector
	now      func() time.Time
}

// NewService はServiceを生成する。
func NewService(idp IdPProvider, verifier IDTokenVerifier, issuer TokenIssuer, userRepo repository.UserRepository, emails EmailProtector) *Service {
	return &Service{
		idp:      idp,
		verifier: verifier,
		issuer:   issuer,
		userRepo: userRepo,
		emails:   emails,
		now:      time.Now,
	}
}

// SignUp は外部IdPに新規アカウントを作成し、トークンを発行する。
// IdP側で作成済みでも本サービス側のユーザーが未作成の場合は作成する。
func (s *Service) SignUp(ctx context.Context, email, password string) (*AuthResult, *model.APIError) {
	cred, err := s.idp.SignUp(ctx, email, password)
	if err != nil {
		return nil, classifyIdPError(err)
	}

	return s.establishSession(ctx, cred)
}

// SignIn は外部IdPでパスワード認証し、トークンを発行する。
// IdPに存在するが本サービス側のユーザーが未作成の場合は自動作成する。
func (s *Service) SignIn(ctx context.Context, email, password string) (*AuthResult, *model.APIError) {
	cred, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		return nil, classifyIdPError(err)
	}

	return s.establishSession(ctx, cred)
}

// Refresh はリフレッシュトークンを検証し、新しいトークンペアを発行する。
// リフレッシュトークンも同時にローテーションする。
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (*AuthResult, *model.APIError) {
	claims, apiErr := s.issuer.VerifyRefreshToken(rawRefreshToken)
	if apiErr != nil {
		return nil, apiErr
	}

	userID := token.SubjectID(claims.Subject)
	user, err := s.userRepo.FindByPublicID(ctx, userID)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find user: %v", err))
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	if !user.IsActive {
		return nil, model.NewAccountDisabledError()
	}

	return s.issueTokens(user)
}

// establishSession はIdPの認証結果からユーザーを特定（なければ作成）し、
// トークンペアを発行する。
func (s *Service) establishSession(ctx context.Context, cred *IdPCredential) (*AuthResult, *model.APIError) {
	claims, apiErr := s.verifier.VerifyIDToken(ctx, cred.IDToken)
	if apiErr != nil {
		return nil, apiErr
	}

	user, err := s.userRepo.FindByProviderSubject(ctx, IdPProviderName, claims.Subject)
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Sprintf("failed to find user by provider subject: %v", err))
	}

	now := s.now()

	if user == nil {
		// 新規ユーザー: usersレコードとidentitiesレコードを同時に作成。
		// メールアドレスは暗号文・nonce・検索用ハッシュに変換してから保存する。
		ciphertext, nonce, encErr := s.emails.Encrypt(claims.Email)
		if encErr != nil {
			return nil, model.NewInternalError(fmt.Sprintf("failed to protect email: %v", encErr))
		}
		protected := model.ProtectedEmail{
			Cipher: ciphertext,
			Nonce:  nonce,
			Hash:   s.emails.Hash(claims.Email),
		}
		input := model.BuildNewUser(IdPProviderName, claims.Subject, protected, claims.EmailVerified)
		user = &model.User{
			PublicID:  uuid.New(),
			Name:      input.Name,
			Role:      input.Role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		identity := input.Identity
		identity.CreatedAt = now

		if err := s.userRepo.CreateWithIdentity(ctx, user, &identity); err != nil {
			return nil, model.NewDatabaseError(fmt.Sprintf("failed to create user and identity: %v", err))
		}

		slog.Info("new user created",
			slog.String("user_id", user.PublicID.String()),
			slog.String("provider", IdPProviderName),
		)
	} else if !user.IsActive {
		return nil, model.NewAccountDisabledError()
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.PublicID, now); err != nil {
		// ログイン日時の記録失敗は認証自体を失敗させない
		slog.Warn("failed to update last login",
			slog.String("user_id", user.PublicID.String()),
			slog.String("error", err.Error()),
		)
	}
	user.LastLoginAt = &now

	return s.issueTokens(user)
}

// issueTokens はユーザーのトークンペアを発行する。
func (s *Service) issueTokens(user *model.User) (*AuthResult, *model.APIError) {
	now := s.now()

	accessToken, apiErr := s.issuer.GenerateAccessToken(user, now)
	if apiErr != nil {
		return nil, apiErr
	}

	refreshToken, apiErr := s.issuer.GenerateRefreshToken(user, now)
	if apiErr != nil {
		return nil, apiErr
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.issuer.AccessTTL().Seconds()),
	}, nil
}

// classifyIdPError は外部IdPのエラーをAPIエラーに分類する。
// 4xxのIdP定義コードは認証系エラー、それ以外は外部サービスエラーとして扱う。
func classifyIdPError(err error) *model.APIError {
	var idpErr *IdPAuthError
	if !errors.As(err, &idpErr) {
		return model.NewExternalServiceError(fmt.Sprintf("idp request failed: %v", err))
	}

	// WEAK_PASSWORDはコロン区切りの詳細が付くことがある
	if strings.HasPrefix(idpErr.Message, "WEAK_PASSWORD") {
		return model.NewValidationError("パスワードは6文字以上で指定してください。")
	}

	switch idpErr.Message {
	case "EMAIL_EXISTS":
		return model.NewEmailExistsError()
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return model.NewInvalidCredentialsError()
	case "USER_DISABLED":
		return model.NewAccountDisabledError()
	default:
		return model.NewInvalidCredentialsError().WithInternal(idpErr.Error())
	}
}
