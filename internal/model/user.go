// Package model はドメインモデルを定義する。
package model

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// UserRole はユーザーの権限種別を表す。
type UserRole string

const (
	// RoleAdmin は管理者ロール。
	RoleAdmin UserRole = "admin"
	// RoleUser は一般ユーザーロール（デフォルト）。
	RoleUser UserRole = "user"
)

// User はサービス利用ユーザーを表す。
// PublicIDが外部公開される安定識別子で、アクセストークンのsubに入る。
type User struct {
	PublicID    uuid.UUID
	Name        string
	Role        UserRole
	IsActive    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProtectedEmail は保存用に保護済みのメールアドレス表現。
// 本文はAES-256-GCMの暗号文とnonce、等値検索用にHMAC-SHA256のハッシュ値を持つ。
// 保護処理自体はsecurityパッケージが担い、modelは結果のみを保持する。
type ProtectedEmail struct {
	Cipher []byte
	Nonce  []byte
	Hash   []byte
}

// Identity は外部IdPとの紐付け情報を表す。
// 将来的に複数のIdP（Firebase, Google直接等）に対応可能な構造。
// メールアドレスは平文では保持しない。
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          ProtectedEmail
	EmailVerified  bool
	IsPrimary      bool
	CreatedAt      time.Time
}

// NewUser は新規登録ユーザーの入力を表す。
// 名前はランダムな英数字10文字で初期化され、後からプロフィール更新で変更できる。
type NewUser struct {
	Name     string
	Role     UserRole
	Identity Identity
}

// BuildNewUser はIdP検証結果から新規ユーザー入力を構築する。
// emailには呼び出し側で保護済みの表現を渡す。
func BuildNewUser(provider, providerUserID string, email ProtectedEmail, emailVerified bool) NewUser {
	return NewUser{
		Name: randomUserName(10),
		Role: RoleUser,
		Identity: Identity{
			Provider:       provider,
			ProviderUserID: providerUserID,
			Email:          email,
			EmailVerified:  emailVerified,
			IsPrimary:      true,
		},
	}
}

// UpdateUser はユーザープロフィール更新の入力を表す。
// nilフィールドは変更しない。
type UpdateUser struct {
	Name *string
}

// Validate は更新入力を検証する。
func (u UpdateUser) Validate() *APIError {
	if u.Name != nil {
		if l := len([]rune(*u.Name)); l < 1 || l > 15 {
			return NewValidationError("名前は1〜15文字で指定してください。")
		}
	}
	return nil
}

const userNameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomUserName は暗号的乱数で初期ユーザー名を生成する。
func randomUserName(length int) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(userNameAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/randの失敗は実行環境の異常。固定文字で埋めて続行する。
			out[i] = 'x'
			continue
		}
		out[i] = userNameAlphabet[n.Int64()]
	}
	return string(out)
}
