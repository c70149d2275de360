// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// config以外のパッケージはos.Getenvを直接呼ばず、必ずこの構造体を注入で受け取る。
type Config struct {
	// Database
	DatabaseURL string

	// IdP（外部認証プロバイダー）
	IdPJWKSURL    string
	IdPProjectID  string
	IdPSignUpURL  string
	IdPSignInURL  string
	IdPAPIKey     string
	IdPIssuerBase string
	IdPTimeout    time.Duration

	// アプリ発行トークン
	AccessTokenSecret  string
	RefreshTokenSecret string
	TokenAudience      string
	TokenIssuer        string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	// メールアドレス保存時保護（暗号鍵とペッパー）
	EmailEncryptionKey string
	EmailHashPepper    string

	// Rate Limit
	RateLimitGeneral  int
	RateLimitMutation int

	// Server
	ServerPort         string
	BaseURL            string
	MaxRequestBodySize int64

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.IdPJWKSURL = os.Getenv("IDP_JWKS_URL")
	if cfg.IdPJWKSURL == "" {
		missing = append(missing, "IDP_JWKS_URL")
	}

	cfg.IdPProjectID = os.Getenv("IDP_PROJECT_ID")
	if cfg.IdPProjectID == "" {
		missing = append(missing, "IDP_PROJECT_ID")
	}

	cfg.IdPSignUpURL = os.Getenv("IDP_SIGNUP_URL")
	if cfg.IdPSignUpURL == "" {
		missing = append(missing, "IDP_SIGNUP_URL")
	}

	cfg.IdPSignInURL = os.Getenv("IDP_SIGNIN_URL")
	if cfg.IdPSignInURL == "" {
		missing = append(missing, "IDP_SIGNIN_URL")
	}

	cfg.IdPAPIKey = os.Getenv("IDP_API_KEY")
	if cfg.IdPAPIKey == "" {
		missing = append(missing, "IDP_API_KEY")
	}

	cfg.AccessTokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	if cfg.AccessTokenSecret == "" {
		missing = append(missing, "ACCESS_TOKEN_SECRET")
	}

	cfg.RefreshTokenSecret = os.Getenv("REFRESH_TOKEN_SECRET")
	if cfg.RefreshTokenSecret == "" {
		missing = append(missing, "REFRESH_TOKEN_SECRET")
	}

	cfg.TokenAudience = os.Getenv("TOKEN_AUDIENCE")
	if cfg.TokenAudience == "" {
		missing = append(missing, "TOKEN_AUDIENCE")
	}

	cfg.TokenIssuer = os.Getenv("TOKEN_ISSUER")
	if cfg.TokenIssuer == "" {
		missing = append(missing, "TOKEN_ISSUER")
	}

	cfg.EmailEncryptionKey = os.Getenv("EMAIL_ENCRYPTION_KEY")
	if cfg.EmailEncryptionKey == "" {
		missing = append(missing, "EMAIL_ENCRYPTION_KEY")
	}

	cfg.EmailHashPepper = os.Getenv("EMAIL_HASH_PEPPER")
	if cfg.EmailHashPepper == "" {
		missing = append(missing, "EMAIL_HASH_PEPPER")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.IdPIssuerBase = getEnvString("IDP_ISSUER_BASE", "https://securetoken.google.com")
	cfg.IdPTimeout = getEnvDuration("IDP_TIMEOUT", 10*time.Second)
	cfg.AccessTokenTTL = getEnvDuration("ACCESS_TOKEN_TTL", 1*time.Hour)
	cfg.RefreshTokenTTL = getEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitMutation = getEnvInt("RATE_LIMIT_MUTATION", 30)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MaxRequestBodySize = getEnvInt64("MAX_REQUEST_BODY_SIZE", 6*1024*1024)
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if cfg.RefreshTokenTTL <= cfg.AccessTokenTTL {
		return nil, fmt.Errorf("REFRESH_TOKEN_TTL must be greater than ACCESS_TOKEN_TTL")
	}

	return cfg, nil
}

// IdPIssuer はIDトークンに期待する発行者文字列を返す。
// 形式は https://<プロバイダーホスト>/<プロジェクトID>。
func (c *Config) IdPIssuer() string {
	return strings.TrimSuffix(c.IdPIssuerBase, "/") + "/" + c.IdPProjectID
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
