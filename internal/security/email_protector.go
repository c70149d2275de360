package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// EmailProtector はIdP由来のメールアドレスを保存用に保護する。
// 本文はAES-256-GCMで暗号化し、等値検索用にHMAC-SHA256のハッシュ値を併置する。
// 平文のメールアドレスをデータベースに書き込んではならない。
type EmailProtector struct {
	aead   cipher.AEAD
	pepper []byte
}

// NewEmailProtector はEmailProtectorを生成する。
// 暗号鍵は設定文字列のSHA-256ダイジェストから導出する。
// 暗号鍵とハッシュ用ペッパーには別の値を使うこと。
func NewEmailProtector(encryptionKey, hashPepper string) (*EmailProtector, error) {
	if encryptionKey == "" {
		return nil, fmt.Errorf("email encryption key must not be empty")
	}
	if hashPepper == "" {
		return nil, fmt.Errorf("email hash pepper must not be empty")
	}

	key := sha256.Sum256([]byte(encryptionKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &EmailProtector{
		aead:   aead,
		pepper: []byte(hashPepper),
	}, nil
}

// Encrypt はメールアドレスを暗号化し、暗号文と暗号化ごとに新しいnonceを返す。
func (p *EmailProtector) Encrypt(plaintext string) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, p.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = p.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return ciphertext, nonce, nil
}

// Decrypt は暗号文とnonceの組からメールアドレスを復号する。
func (p *EmailProtector) Decrypt(ciphertext, nonce []byte) (string, error) {
	plaintext, err := p.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt email: %w", err)
	}
	return string(plaintext), nil
}

// Hash は等値検索用の決定的なハッシュ値を返す。
// 同じペッパーなら同じ入力に対して常に同じ値になる。
func (p *EmailProtector) Hash(plaintext string) []byte {
	mac := hmac.New(sha256.New, p.pepper)
	mac.Write([]byte(plaintext))
	return mac.Sum(nil)
}
