package category

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/hitoshi/blogd/internal/model"
	"github.com/lib/pq"
)

// mockCategoryRepo はCategoryRepositoryのテスト用実装。
type mockCategoryRepo struct {
	findByPublicIDFunc   func(ctx context.Context, publicID uuid.UUID) (*model.Category, error)
	listFunc             func(ctx context.Context) ([]*model.Category, error)
	createFunc           func(ctx context.Context, category *model.Category) error
	updateFunc           func(ctx context.Context, category *model.Category) error
	deleteByPublicIDFunc func(ctx context.Context, publicID uuid.UUID) error
}

func (m *mockCategoryRepo) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Category, error) {
	return m.findByPublicIDFunc(ctx, publicID)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	return m.listFunc(ctx)
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	return m.createFunc(ctx, category)
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	return m.updateFunc(ctx, category)
}

func (m *mockCategoryRepo) DeleteByPublicID(ctx context.Context, publicID uuid.UUID) error {
	return m.deleteByPublicIDFunc(ctx, publicID)
}

func TestService_Create_Success(t *testing.T) {
	var created *model.Category
	repo := &mockCategoryRepo{
		createFunc: func(ctx context.Context, category *model.Category) error {
			created = category
			return nil
		},
	}
	service := NewService(repo)

	category, apiErr := service.Create(context.Background(), model.NewCategory{Name: "技術"})
	if apiErr != nil {
		t.Fatalf("Create failed: %v", apiErr)
	}
	if created == nil {
		t.Fatal("category should be persisted")
	}
	if category.Name != "技術" {
		t.Errorf("name = %q, want %q", category.Name, "技術")
	}
	if category.PublicID == uuid.Nil {
		t.Error("public_id should be assigned")
	}
}

func TestService_Create_DuplicateName(t *testing.T) {
	repo := &mockCategoryRepo{
		createFunc: func(ctx context.Context, category *model.Category) error {
			return fmt.Errorf("failed to insert category: %w", &pq.Error{Code: "23505"})
		},
	}
	service := NewService(repo)

	_, apiErr := service.Create(context.Background(), model.NewCategory{Name: "技術"})
	if apiErr == nil {
		t.Fatal("expected conflict error for duplicate name")
	}
	if apiErr.Code != model.ErrCodeDuplicateName {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateName)
	}
	if apiErr.Category != model.CategoryConflict {
		t.Errorf("category = %q, want %q", apiErr.Category, model.CategoryConflict)
	}
}

func TestService_Create_NameTooLong(t *testing.T) {
	service := NewService(&mockCategoryRepo{})

	_, apiErr := service.Create(context.Background(), model.NewCategory{Name: "あいうえおかきくけこさしすせそたちつてとな"}) // 21文字
	if apiErr == nil {
		t.Fatal("expected validation error for 21-char name")
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}
}

func TestService_Get_NotFound(t *testing.T) {
	repo := &mockCategoryRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Category, error) {
			return nil, nil
		},
	}
	service := NewService(repo)

	_, apiErr := service.Get(context.Background(), uuid.New())
	if apiErr == nil {
		t.Fatal("expected not found error")
	}
	if apiErr.Code != model.ErrCodeCategoryNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeCategoryNotFound)
	}
}

func TestService_Update_DuplicateName(t *testing.T) {
	existing := &model.Category{PublicID: uuid.New(), Name: "旧名"}
	repo := &mockCategoryRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Category, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, category *model.Category) error {
			return fmt.Errorf("failed to update category: %w", &pq.Error{Code: "23505"})
		},
	}
	service := NewService(repo)

	_, apiErr := service.Update(context.Background(), existing.PublicID, model.UpdateCategory{Name: "重複名"})
	if apiErr == nil {
		t.Fatal("expected conflict error")
	}
	if apiErr.Code != model.ErrCodeDuplicateName {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateName)
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	repo := &mockCategoryRepo{
		findByPublicIDFunc: func(ctx context.Context, publicID uuid.UUID) (*model.Category, error) {
			return nil, nil
		},
	}
	service := NewService(repo)

	if apiErr := service.Delete(context.Background(), uuid.New()); apiErr == nil {
		t.Fatal("expected not found error")
	}
}

func TestService_List(t *testing.T) {
	repo := &mockCategoryRepo{
		listFunc: func(ctx context.Context) ([]*model.Category, error) {
			return []*model.Category{
				{PublicID: uuid.New(), Name: "技術"},
				{PublicID: uuid.New(), Name: "日記"},
			}, nil
		},
	}
	service := NewService(repo)

	categories, apiErr := service.List(context.Background())
	if apiErr != nil {
		t.Fatalf("List failed: %v", apiErr)
	}
	if len(categories) != 2 {
		t.Errorf("len = %d, want 2", len(categories))
	}
}
