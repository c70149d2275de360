package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
)

// mockUserRepo はUserRepositoryのテスト用実装。
type mockUserRepo struct {
	findByPublicIDFunc        func(ctx context.Context, publicID uuid.UUID) (*model.User, error)
	findByProviderSubjectFunc func(ctx context.Context, provider, providerUserID string) (*model.User, error)
	createWithIdentityFunc    func(ctx context.Context, user *model.User, identity *model.Identity) error
	updateFunc                func(ctx context.Context, publicID uuid.UUID, name string) (*model.User, error)
	updateLastLoginFunc       func(ctx context.Context, publicID uuid.UUID, at time.Time) error
	deleteByPublicIDFunc      func(ctx context.Context, publicID uuid.UUID) error
}

func (m *mockUserRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.User, error) {
	return m.findByPublicIDFunc(ctx, publicID)
}

func (m *mockUserRepo) FindByProviderSubject(ctx context.Context, provider, providerUserID string) (*model.User, error) {
	return m.findByProviderSubjectFunc(ctx, provider, providerUserID)
}

func (m *mockUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	return m.createWithIdentityFunc(ctx, user, identity)
}

func (m *mockUserRepo) Update(ctx context.Context, publicID uuid.UUID, name string) (*model.User, error) {
	return m.updateFunc(ctx, publicID, name)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, publicID uuid.UUID, at time.Time) error {
	return m.updateLastLoginFunc(ctx, publicID, at)
}

func (m *mockUserRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	return m.deleteByPublicIDFunc(ctx, publicID)
}

func TestService_Get_NotFound(t *testing.T) {
	repo := &mockUserRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.User, error) {
			return nil, nil
		},
	}
	service := NewService(repo)

	_, apiErr := service.Get(context.Background(), uuid.New())
	if apiErr == nil {
		t.Fatal("expected not found error")
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
}

func TestService_Update_SelfOnly(t *testing.T) {
	me := uuid.New()
	repo := &mockUserRepo{
		updateFunc: func(ctx context.Context, publicID uuid.UUID, name string) (*model.User, error) {
			return &model.User{PublicID: publicID, Name: name, Role: model.RoleUser, IsActive: true}, nil
		},
	}
	service := NewService(repo)

	name := "新しい名前"

	// 他人のプロフィールは変更できない
	_, apiErr := service.Update(context.Background(), uuid.New(), me, model.UpdateUser{Name: &name})
	if apiErr == nil {
		t.Fatal("expected ownership error for another user")
	}
	if apiErr.Code != model.ErrCodeOwnershipViolation {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeOwnershipViolation)
	}

	// 本人は変更できる
	user, apiErr := service.Update(context.Background(), me, me, model.UpdateUser{Name: &name})
	if apiErr != nil {
		t.Fatalf("Update failed: %v", apiErr)
	}
	if user.Name != "新しい名前" {
		t.Errorf("name = %q, want %q", user.Name, "新しい名前")
	}
}

func TestService_Update_NameTooLong(t *testing.T) {
	me := uuid.New()
	service := NewService(&mockUserRepo{})

	name := "あいうえおかきくけこさしすせそた" // 16文字
	_, apiErr := service.Update(context.Background(), me, me, model.UpdateUser{Name: &name})
	if apiErr == nil {
		t.Fatal("expected validation error for 16-char name")
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}
}

func TestService_Update_NoChanges(t *testing.T) {
	me := uuid.New()
	repo := &mockUserRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.User, error) {
			return &model.User{PublicID: publicID, Name: "現状の名前"}, nil
		},
		updateFunc: func(ctx context.Context, publicID uuid.UUID, name string) (*model.User, error) {
			t.Fatal("update should not be called without changes")
			return nil, nil
		},
	}
	service := NewService(repo)

	user, apiErr := service.Update(context.Background(), me, me, model.UpdateUser{})
	if apiErr != nil {
		t.Fatalf("Update failed: %v", apiErr)
	}
	if user.Name != "現状の名前" {
		t.Errorf("name = %q, want unchanged", user.Name)
	}
}

func TestService_Delete_SelfOnly(t *testing.T) {
	me := uuid.New()
	deleted := false
	repo := &mockUserRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.User, error) {
			return &model.User{PublicID: publicID, IsActive: true}, nil
		},
		deleteByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	service := NewService(repo)

	if apiErr := service.Delete(context.Background(), uuid.New(), me); apiErr == nil {
		t.Fatal("expected ownership error for another user")
	}
	if deleted {
		t.Fatal("user must not be deleted by another user")
	}

	if apiErr := service.Delete(context.Background(), me, me); apiErr != nil {
		t.Fatalf("Delete failed: %v", apiErr)
	}
	if !deleted {
		t.Fatal("user should be deleted")
	}
}
