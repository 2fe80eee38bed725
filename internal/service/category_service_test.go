package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
)

// Mock repository for testing
type mockCategoryRepository struct {
	categories     map[uuid.UUID]*domain.Category
	activeProducts map[uuid.UUID]bool // category ID -> has active products
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories:     make(map[uuid.UUID]*domain.Category),
		activeProducts: make(map[uuid.UUID]bool),
	}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	c := *category
	m.categories[category.ID] = &c
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, exists := m.categories[category.ID]; !exists {
		return repository.ErrCategoryNotFound
	}
	c := *category
	m.categories[category.ID] = &c
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.categories[id]; !exists {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	c := *category
	return &c, nil
}

func (m *mockCategoryRepository) FindAllOrdered(ctx context.Context) ([]*domain.Category, error) {
	all := []*domain.Category{}
	for _, category := range m.categories {
		c := *category
		all = append(all, &c)
	}
	sortBySortOrder(all)
	return all, nil
}

func (m *mockCategoryRepository) FindRoots(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	roots := []*domain.Category{}
	for _, category := range m.categories {
		if category.ParentID != nil {
			continue
		}
		if activeOnly && !category.Active {
			continue
		}
		c := *category
		roots = append(roots, &c)
	}
	sortBySortOrder(roots)
	return roots, nil
}

func (m *mockCategoryRepository) FindByParentID(ctx context.Context, parentID uuid.UUID) ([]*domain.Category, error) {
	children := []*domain.Category{}
	for _, category := range m.categories {
		if category.ParentID != nil && *category.ParentID == parentID {
			c := *category
			children = append(children, &c)
		}
	}
	sortBySortOrder(children)
	return children, nil
}

func (m *mockCategoryRepository) SearchByName(ctx context.Context, name string) ([]*domain.Category, error) {
	matches := []*domain.Category{}
	for _, category := range m.categories {
		if strings.Contains(strings.ToLower(category.Name), strings.ToLower(name)) {
			c := *category
			matches = append(matches, &c)
		}
	}
	sortBySortOrder(matches)
	return matches, nil
}

func (m *mockCategoryRepository) ExistsByNameInScope(ctx context.Context, name string, parentID *uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	for _, category := range m.categories {
		if excludeID != nil && category.ID == *excludeID {
			continue
		}
		if !strings.EqualFold(category.Name, name) {
			continue
		}
		if sameParent(category.ParentID, parentID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCategoryRepository) ExistsByParentID(ctx context.Context, parentID uuid.UUID) (bool, error) {
	for _, category := range m.categories {
		if category.ParentID != nil && *category.ParentID == parentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCategoryRepository) ExistsActiveProductInCategory(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	return m.activeProducts[categoryID], nil
}

func sortBySortOrder(categories []*domain.Category) {
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func seedCategory(repo *mockCategoryRepository, name string, parentID *uuid.UUID, active bool, sortOrder int) *domain.Category {
	now := time.Now()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Active:    active,
		SortOrder: sortOrder,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo.categories[category.ID] = category
	return category
}

func TestCreateCategory_DuplicateNameInScope(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)
	ctx := context.Background()

	root := seedCategory(repo, "Electronics", nil, true, 0)
	seedCategory(repo, "Audio", &root.ID, true, 0)

	// Same name under the same parent is rejected, case-insensitively
	_, err := service.Create(ctx, CreateCategoryInput{Name: "audio", Active: true, ParentID: &root.ID})
	if !errors.Is(err, ErrCategoryNameExists) {
		t.Errorf("expected ErrCategoryNameExists, got %v", err)
	}

	// Same name at the root scope is a different scope and is allowed
	if _, err := service.Create(ctx, CreateCategoryInput{Name: "Audio", Active: true}); err != nil {
		t.Errorf("expected create to succeed in root scope, got %v", err)
	}

	// Two roots with the same name collide
	_, err = service.Create(ctx, CreateCategoryInput{Name: "ELECTRONICS", Active: true})
	if !errors.Is(err, ErrCategoryNameExists) {
		t.Errorf("expected ErrCategoryNameExists for duplicate root, got %v", err)
	}
}

func TestCreateCategory_ParentNotFound(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)

	missing := uuid.New()
	_, err := service.Create(context.Background(), CreateCategoryInput{Name: "Orphan", Active: true, ParentID: &missing})
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestUpdateCategory_SelfParent(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)

	root := seedCategory(repo, "Electronics", nil, true, 0)

	_, err := service.Update(context.Background(), root.ID, UpdateCategoryInput{ParentID: &root.ID})
	if !errors.Is(err, ErrSelfParent) {
		t.Errorf("expected ErrSelfParent, got %v", err)
	}
}

func TestUpdateCategory_DescendantParent(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)
	ctx := context.Background()

	root := seedCategory(repo, "Electronics", nil, true, 0)
	child := seedCategory(repo, "Audio", &root.ID, true, 0)
	grandchild := seedCategory(repo, "Headphones", &child.ID, true, 0)

	// Moving the root under its grandchild would create a cycle
	_, err := service.Update(ctx, root.ID, UpdateCategoryInput{ParentID: &grandchild.ID})
	if !errors.Is(err, ErrDescendantParent) {
		t.Errorf("expected ErrDescendantParent, got %v", err)
	}

	// Moving the grandchild under the root is fine
	if _, err := service.Update(ctx, grandchild.ID, UpdateCategoryInput{ParentID: &root.ID}); err != nil {
		t.Errorf("expected re-parent to succeed, got %v", err)
	}
}

func TestUpdateCategory_RenameCaseOnly(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)

	root := seedCategory(repo, "Electronics", nil, true, 0)

	// Changing only the letter case of a category's own name is not a collision
	name := "ELECTRONICS"
	node, err := service.Update(context.Background(), root.ID, UpdateCategoryInput{Name: &name})
	if err != nil {
		t.Fatalf("expected case-only rename to succeed, got %v", err)
	}
	if node.Name != "Electronics" {
		// EqualFold short-circuits, the stored name is untouched
		t.Errorf("expected name unchanged, got %s", node.Name)
	}
}

func TestDeleteCategory_Guards(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)
	ctx := context.Background()

	root := seedCategory(repo, "Electronics", nil, true, 0)
	child := seedCategory(repo, "Audio", &root.ID, true, 0)
	withProducts := seedCategory(repo, "Phones", nil, true, 1)
	repo.activeProducts[withProducts.ID] = true

	if err := service.Delete(ctx, root.ID); !errors.Is(err, ErrCategoryHasChildren) {
		t.Errorf("expected ErrCategoryHasChildren, got %v", err)
	}

	if err := service.Delete(ctx, withProducts.ID); !errors.Is(err, ErrCategoryHasProducts) {
		t.Errorf("expected ErrCategoryHasProducts, got %v", err)
	}

	if err := service.Delete(ctx, child.ID); err != nil {
		t.Errorf("expected leaf delete to succeed, got %v", err)
	}

	if err := service.Delete(ctx, uuid.New()); !errors.Is(err, repository.ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestGetByID_DerivedHierarchyFields(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)
	ctx := context.Background()

	root := seedCategory(repo, "Electronics", nil, true, 0)
	child := seedCategory(repo, "Audio", &root.ID, true, 0)
	grandchild := seedCategory(repo, "Headphones", &child.ID, true, 0)

	rootNode, err := service.GetByID(ctx, root.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rootNode.Level != 0 || !rootNode.Root || rootNode.FullPath != "Electronics" || rootNode.ParentName != "" {
		t.Errorf("unexpected root node: level=%d root=%v path=%q parent=%q",
			rootNode.Level, rootNode.Root, rootNode.FullPath, rootNode.ParentName)
	}

	node, err := service.GetByID(ctx, grandchild.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Level != 2 {
		t.Errorf("expected level 2, got %d", node.Level)
	}
	if node.Root {
		t.Error("grandchild should not be a root")
	}
	if node.ParentName != "Audio" {
		t.Errorf("expected parent name Audio, got %s", node.ParentName)
	}
	if node.FullPath != "Electronics > Audio > Headphones" {
		t.Errorf("unexpected full path: %s", node.FullPath)
	}
}

func TestGetWithSubcategories_SkipsInactiveSubtrees(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)
	ctx := context.Background()

	root := seedCategory(repo, "Electronics", nil, true, 0)
	active := seedCategory(repo, "Audio", &root.ID, true, 0)
	inactive := seedCategory(repo, "Legacy", &root.ID, false, 1)
	// An active child below an inactive node must not surface
	seedCategory(repo, "Cassettes", &inactive.ID, true, 0)
	seedCategory(repo, "Headphones", &active.ID, true, 0)

	node, err := service.GetWithSubcategories(ctx, root.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(node.Subcategories) != 1 {
		t.Fatalf("expected 1 active subcategory, got %d", len(node.Subcategories))
	}
	if node.Subcategories[0].Name != "Audio" {
		t.Errorf("expected Audio, got %s", node.Subcategories[0].Name)
	}
	if len(node.Subcategories[0].Subcategories) != 1 {
		t.Fatalf("expected nested child, got %d", len(node.Subcategories[0].Subcategories))
	}
	if got := node.Subcategories[0].Subcategories[0]; got.Level != 2 || got.FullPath != "Electronics > Audio > Headphones" {
		t.Errorf("unexpected nested node: level=%d path=%q", got.Level, got.FullPath)
	}
}

func TestGetWithSubcategories_ChildrenSortedBySortOrder(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)
	ctx := context.Background()

	root := seedCategory(repo, "Electronics", nil, true, 0)
	seedCategory(repo, "Wearables", &root.ID, true, 2)
	seedCategory(repo, "Audio", &root.ID, true, 0)
	seedCategory(repo, "Phones", &root.ID, true, 1)

	node, err := service.GetWithSubcategories(ctx, root.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Audio", "Phones", "Wearables"}
	if len(node.Subcategories) != len(want) {
		t.Fatalf("expected %d subcategories, got %d", len(want), len(node.Subcategories))
	}
	for i, name := range want {
		if node.Subcategories[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, node.Subcategories[i].Name)
		}
	}
}

func TestListRoots_ActiveOnly(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)

	seedCategory(repo, "Electronics", nil, true, 0)
	seedCategory(repo, "Discontinued", nil, false, 1)

	roots, err := service.ListRoots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 1 || roots[0].Name != "Electronics" {
		t.Errorf("expected only the active root, got %d roots", len(roots))
	}
}

func TestDeactivate_LeavesDescendantsUntouched(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)
	ctx := context.Background()

	root := seedCategory(repo, "Electronics", nil, true, 0)
	child := seedCategory(repo, "Audio", &root.ID, true, 0)

	node, err := service.Deactivate(ctx, root.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Active {
		t.Error("expected category to be inactive")
	}

	stored, err := repo.FindByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.Active {
		t.Error("deactivation must not cascade to descendants")
	}
}

func TestSearch_MatchesAreSubtrees(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)

	root := seedCategory(repo, "Electronics", nil, true, 0)
	seedCategory(repo, "Audio", &root.ID, true, 0)
	seedCategory(repo, "Electric Guitars", nil, true, 1)

	matches, err := service.Search(context.Background(), "electr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if len(matches[0].Subcategories) != 1 {
		t.Errorf("expected the match to carry its subtree, got %d children", len(matches[0].Subcategories))
	}
}
