package auth

import (
	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// VerifyResourceOwnership はリソースの所有者と操作主体が一致するか検証する。
// ownerIDがnilのリソース（ゲスト投稿等）は所有者が存在しないため常に違反となる。
func VerifyResourceOwnership(ownerID *uuid.UUID, principalID uuid.UUID) *model.APIError {
	if ownerID == nil {
		return model.NewOwnershipError()
	}
	if *ownerID != principalID {
		return model.NewOwnershipError()
	}
	return nil
}

// VerifySelf は対象ユーザーと操作主体が同一人物か検証する。
// ユーザー自身のプロフィール変更・退会で使う。
func VerifySelf(targetID, principalID uuid.UUID) *model.APIError {
	if targetID != principalID {
		return model.NewOwnershipError()
	}
	return nil
}
