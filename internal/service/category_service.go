package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCategoryNameExists  = errors.New("category with this name already exists in this scope")
	ErrSelfParent          = errors.New("category cannot be its own parent")
	ErrDescendantParent    = errors.New("cannot set parent to a descendant category")
	ErrCategoryHasChildren = errors.New("cannot delete category with subcategories")
	ErrCategoryHasProducts = errors.New("cannot delete category with active products")
)

// CreateCategoryInput carries the fields for a new category.
type CreateCategoryInput struct {
	Name        string
	Description string
	ImageURL    string
	Active      bool
	SortOrder   int
	ParentID    *uuid.UUID
}

// UpdateCategoryInput is a partial update: nil fields are left unchanged.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	ImageURL    *string
	SortOrder   *int
	ParentID    *uuid.UUID
}

// CategoryService defines the business logic for the category hierarchy.
// Tree-returning operations materialize the full active subtree of each
// result, sorted by sort order at every level.
type CategoryService interface {
	Create(ctx context.Context, input CreateCategoryInput) (*domain.CategoryNode, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*domain.CategoryNode, error)
	Activate(ctx context.Context, id uuid.UUID) (*domain.CategoryNode, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*domain.CategoryNode, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CategoryNode, error)
	GetWithSubcategories(ctx context.Context, id uuid.UUID) (*domain.CategoryNode, error)
	ListAll(ctx context.Context) ([]*domain.CategoryNode, error)
	ListRoots(ctx context.Context) ([]*domain.CategoryNode, error)
	ListRootsWithSubcategories(ctx context.Context) ([]*domain.CategoryNode, error)
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.CategoryNode, error)
	Search(ctx context.Context, name string) ([]*domain.CategoryNode, error)
	IsDescendant(ctx context.Context, ancestorID, candidateID uuid.UUID) (bool, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// Create validates the parent reference and the sibling name uniqueness, then
// persists the new category
func (s *categoryService) Create(ctx context.Context, input CreateCategoryInput) (*domain.CategoryNode, error) {
	if input.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, fmt.Errorf("parent category %s: %w", input.ParentID, repository.ErrCategoryNotFound)
			}
			return nil, fmt.Errorf("failed to look up parent category: %w", err)
		}
	}

	exists, err := s.categoryRepo.ExistsByNameInScope(ctx, input.Name, input.ParentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check sibling names: %w", err)
	}
	if exists {
		return nil, ErrCategoryNameExists
	}

	now := time.Now()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Active:      input.Active,
		SortOrder:   input.SortOrder,
		ParentID:    input.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return s.flatNode(ctx, category)
}

// Update applies a partial update. A changed name re-validates sibling
// uniqueness; a changed parent re-validates the acyclicity guard.
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*domain.CategoryNode, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && !strings.EqualFold(*input.Name, category.Name) {
		exists, err := s.categoryRepo.ExistsByNameInScope(ctx, *input.Name, category.ParentID, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check sibling names: %w", err)
		}
		if exists {
			return nil, ErrCategoryNameExists
		}
		category.Name = *input.Name
	}

	if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, ErrSelfParent
		}

		// A node may not move under its own descendant: walk upward from the
		// proposed parent looking for the node itself.
		descendant, err := s.IsDescendant(ctx, id, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if descendant {
			return nil, ErrDescendantParent
		}

		if _, err := s.categoryRepo.FindByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, fmt.Errorf("parent category %s: %w", input.ParentID, repository.ErrCategoryNotFound)
			}
			return nil, fmt.Errorf("failed to look up new parent: %w", err)
		}
		category.ParentID = input.ParentID
	}

	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.ImageURL != nil {
		category.ImageURL = *input.ImageURL
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return s.flatNode(ctx, category)
}

// Activate flips the active flag on; descendants are untouched
func (s *categoryService) Activate(ctx context.Context, id uuid.UUID) (*domain.CategoryNode, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate flips the active flag off; descendants are untouched
func (s *categoryService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.CategoryNode, error) {
	return s.setActive(ctx, id, false)
}

func (s *categoryService) setActive(ctx context.Context, id uuid.UUID, active bool) (*domain.CategoryNode, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Active = active
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return s.flatNode(ctx, category)
}

// Delete removes a category. It refuses to delete a category that still has
// subcategories or active products.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	hasChildren, err := s.categoryRepo.ExistsByParentID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check subcategories: %w", err)
	}
	if hasChildren {
		return ErrCategoryHasChildren
	}

	hasProducts, err := s.categoryRepo.ExistsActiveProductInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category products: %w", err)
	}
	if hasProducts {
		return ErrCategoryHasProducts
	}

	return s.categoryRepo.Delete(ctx, id)
}

// GetByID returns the flat category with derived hierarchy fields, without
// materializing children and regardless of its active state
func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CategoryNode, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.flatNode(ctx, category)
}

// GetWithSubcategories returns the category with its full subtree
// materialized, active descendants only, sorted by sort order at each level
func (s *categoryService) GetWithSubcategories(ctx context.Context, id uuid.UUID) (*domain.CategoryNode, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	node, err := s.flatNode(ctx, category)
	if err != nil {
		return nil, err
	}

	return s.buildTree(ctx, node)
}

// ListAll returns every category ordered by sort order, each with its active
// subtree materialized
func (s *categoryService) ListAll(ctx context.Context) ([]*domain.CategoryNode, error) {
	categories, err := s.categoryRepo.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}

	return s.treeNodes(ctx, categories)
}

// ListRoots returns all active root categories, flat
func (s *categoryService) ListRoots(ctx context.Context) ([]*domain.CategoryNode, error) {
	roots, err := s.categoryRepo.FindRoots(ctx, true)
	if err != nil {
		return nil, err
	}

	nodes := make([]*domain.CategoryNode, 0, len(roots))
	for _, root := range roots {
		node, err := s.flatNode(ctx, root)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// ListRootsWithSubcategories returns all active root categories with their
// full active subtrees
func (s *categoryService) ListRootsWithSubcategories(ctx context.Context) ([]*domain.CategoryNode, error) {
	roots, err := s.categoryRepo.FindRoots(ctx, true)
	if err != nil {
		return nil, err
	}

	return s.treeNodes(ctx, roots)
}

// GetChildren returns the immediate children of a category, each as a nested
// subtree. The parent must exist.
func (s *categoryService) GetChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.CategoryNode, error) {
	if _, err := s.categoryRepo.FindByID(ctx, parentID); err != nil {
		return nil, err
	}

	children, err := s.categoryRepo.FindByParentID(ctx, parentID)
	if err != nil {
		return nil, err
	}

	return s.treeNodes(ctx, children)
}

// Search returns all categories whose name contains the pattern
// (case-insensitive), each as a nested subtree
func (s *categoryService) Search(ctx context.Context, name string) ([]*domain.CategoryNode, error) {
	matches, err := s.categoryRepo.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}

	return s.treeNodes(ctx, matches)
}

// IsDescendant reports whether candidateID sits somewhere below ancestorID:
// it walks candidate's parent chain upward until it finds ancestorID or a
// root. A missing candidate is treated as not a descendant.
func (s *categoryService) IsDescendant(ctx context.Context, ancestorID, candidateID uuid.UUID) (bool, error) {
	current, err := s.categoryRepo.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return false, nil
		}
		return false, err
	}

	for current.ParentID != nil {
		if *current.ParentID == ancestorID {
			return true, nil
		}
		current, err = s.categoryRepo.FindByID(ctx, *current.ParentID)
		if err != nil {
			return false, fmt.Errorf("failed to walk ancestor chain: %w", err)
		}
	}

	return false, nil
}

// flatNode derives level, full path and parent name by walking the ancestor
// chain; levels are never stored (roots are level 0)
func (s *categoryService) flatNode(ctx context.Context, category *domain.Category) (*domain.CategoryNode, error) {
	node := &domain.CategoryNode{
		Category:      *category,
		Level:         0,
		FullPath:      category.Name,
		Root:          category.IsRoot(),
		Subcategories: []*domain.CategoryNode{},
	}

	parentID := category.ParentID
	names := []string{}
	for parentID != nil {
		parent, err := s.categoryRepo.FindByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("failed to walk ancestor chain: %w", err)
		}
		if node.Level == 0 {
			node.ParentName = parent.Name
		}
		node.Level++
		names = append(names, parent.Name)
		parentID = parent.ParentID
	}

	if len(names) > 0 {
		// names were collected child-to-root; reverse into root-to-child order
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
		node.FullPath = strings.Join(names, domain.PathSeparator) + domain.PathSeparator + category.Name
	}

	return node, nil
}

// buildTree recursively attaches the active subtree below node. Children
// arrive from the repository already sorted by sort order; inactive children
// are dropped together with their entire subtrees. Recursion depth is bounded
// by the actual tree depth.
func (s *categoryService) buildTree(ctx context.Context, node *domain.CategoryNode) (*domain.CategoryNode, error) {
	children, err := s.categoryRepo.FindByParentID(ctx, node.ID)
	if err != nil {
		return nil, err
	}

	for _, child := range children {
		if !child.Active {
			continue
		}

		childNode := &domain.CategoryNode{
			Category:      *child,
			ParentName:    node.Name,
			Level:         node.Level + 1,
			FullPath:      node.FullPath + domain.PathSeparator + child.Name,
			Root:          false,
			Subcategories: []*domain.CategoryNode{},
		}

		childNode, err = s.buildTree(ctx, childNode)
		if err != nil {
			return nil, err
		}
		node.Subcategories = append(node.Subcategories, childNode)
	}

	return node, nil
}

func (s *categoryService) treeNodes(ctx context.Context, categories []*domain.Category) ([]*domain.CategoryNode, error) {
	nodes := make([]*domain.CategoryNode, 0, len(categories))
	for _, category := range categories {
		node, err := s.flatNode(ctx, category)
		if err != nil {
			return nil, err
		}
		node, err = s.buildTree(ctx, node)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}
