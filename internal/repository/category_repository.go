package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog-service/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

const categoryColumns = `id, name, description, image_url, active, sort_order, parent_id, created_at, updated_at`

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindAllOrdered(ctx context.Context) ([]*domain.Category, error)
	FindRoots(ctx context.Context, activeOnly bool) ([]*domain.Category, error)
	FindByParentID(ctx context.Context, parentID uuid.UUID) ([]*domain.Category, error)
	SearchByName(ctx context.Context, name string) ([]*domain.Category, error)
	ExistsByNameInScope(ctx context.Context, name string, parentID *uuid.UUID, excludeID *uuid.UUID) (bool, error)
	ExistsByParentID(ctx context.Context, parentID uuid.UUID) (bool, error)
	ExistsActiveProductInCategory(ctx context.Context, categoryID uuid.UUID) (bool, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category into the database using parameterized queries
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, description, image_url, active, sort_order, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.Description,
		category.ImageURL,
		category.Active,
		category.SortOrder,
		category.ParentID,
		category.CreatedAt,
		category.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// Update updates an existing category in the database using parameterized queries
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, image_url = $4, active = $5,
		    sort_order = $6, parent_id = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.Description,
		category.ImageURL,
		category.Active,
		category.SortOrder,
		category.ParentID,
		category.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete removes a category from the database
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// FindByID retrieves a category by ID
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1`, categoryColumns)

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.ImageURL,
		&category.Active,
		&category.SortOrder,
		&category.ParentID,
		&category.CreatedAt,
		&category.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// FindAllOrdered retrieves every category ordered by sort_order ascending
func (r *categoryRepository) FindAllOrdered(ctx context.Context) ([]*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories ORDER BY sort_order ASC`, categoryColumns)

	return r.queryCategories(ctx, query)
}

// FindRoots retrieves all parentless categories ordered by sort_order,
// optionally restricted to active ones
func (r *categoryRepository) FindRoots(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE parent_id IS NULL ORDER BY sort_order ASC`, categoryColumns)
	if activeOnly {
		query = fmt.Sprintf(`SELECT %s FROM categories WHERE parent_id IS NULL AND active = true ORDER BY sort_order ASC`, categoryColumns)
	}

	return r.queryCategories(ctx, query)
}

// FindByParentID retrieves the immediate children of a category ordered by sort_order
func (r *categoryRepository) FindByParentID(ctx context.Context, parentID uuid.UUID) ([]*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE parent_id = $1 ORDER BY sort_order ASC`, categoryColumns)

	return r.queryCategories(ctx, query, parentID)
}

// SearchByName retrieves categories whose name contains the given pattern,
// case-insensitive, ordered by sort_order
func (r *categoryRepository) SearchByName(ctx context.Context, name string) ([]*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE name ILIKE $1 ORDER BY sort_order ASC`, categoryColumns)

	return r.queryCategories(ctx, query, "%"+name+"%")
}

// ExistsByNameInScope checks for a case-insensitive name collision among the
// siblings of the given parent scope. A nil parentID means the root scope.
// excludeID, when set, ignores that category (used by rename).
func (r *categoryRepository) ExistsByNameInScope(ctx context.Context, name string, parentID *uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE LOWER(name) = LOWER($1)
			  AND parent_id IS NOT DISTINCT FROM $2
			  AND ($3::uuid IS NULL OR id <> $3)
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, name, parentID, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}

	return exists, nil
}

// ExistsByParentID checks whether a category has any subcategories
func (r *categoryRepository) ExistsByParentID(ctx context.Context, parentID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, parentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check subcategories: %w", err)
	}

	return exists, nil
}

// ExistsActiveProductInCategory checks whether any active product is attached
// to the category (used by the deletion guard)
func (r *categoryRepository) ExistsActiveProductInCategory(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE category_id = $1 AND active = true)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category products: %w", err)
	}

	return exists, nil
}

func (r *categoryRepository) queryCategories(ctx context.Context, query string, args ...interface{}) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.ImageURL,
			&category.Active,
			&category.SortOrder,
			&category.ParentID,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
