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
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagAlreadyExists = errors.New("tag with this name already exists")
)

const tagColumns = `id, name, color, created_at, updated_at`

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	Update(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	FindAll(ctx context.Context) ([]*domain.Tag, error)
	FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Tag, error)
	AttachToProduct(ctx context.Context, tagID, productID uuid.UUID) error
	DetachFromProduct(ctx context.Context, tagID, productID uuid.UUID) error
}

type tagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new instance of TagRepository
func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

// Create inserts a new tag
func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	query := `
		INSERT INTO tags (id, name, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.Color, tag.CreatedAt, tag.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTagAlreadyExists
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// Update updates an existing tag
func (r *tagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	query := `UPDATE tags SET name = $2, color = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.Color, tag.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTagAlreadyExists
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTagNotFound
	}

	return nil
}

// Delete removes a tag and its product links
func (r *tagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tags WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTagNotFound
	}

	return nil
}

// FindByID retrieves a tag by ID
func (r *tagRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM tags WHERE id = $1`, tagColumns)

	tag := &domain.Tag{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to find tag by ID: %w", err)
	}

	return tag, nil
}

// FindAll retrieves every tag ordered by name
func (r *tagRepository) FindAll(ctx context.Context) ([]*domain.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM tags ORDER BY name ASC`, tagColumns)

	return r.queryTags(ctx, query)
}

// FindByProductID retrieves all tags attached to a product
func (r *tagRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Tag, error) {
	query := `
		SELECT t.id, t.name, t.color, t.created_at, t.updated_at
		FROM tags t
		JOIN product_tags pt ON pt.tag_id = t.id
		WHERE pt.product_id = $1
		ORDER BY t.name ASC
	`

	return r.queryTags(ctx, query, productID)
}

// AttachToProduct links a tag to a product, idempotently
func (r *tagRepository) AttachToProduct(ctx context.Context, tagID, productID uuid.UUID) error {
	query := `
		INSERT INTO product_tags (product_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, productID, tagID); err != nil {
		return fmt.Errorf("failed to attach tag to product: %w", err)
	}

	return nil
}

// DetachFromProduct removes the link between a tag and a product
func (r *tagRepository) DetachFromProduct(ctx context.Context, tagID, productID uuid.UUID) error {
	query := `DELETE FROM product_tags WHERE product_id = $1 AND tag_id = $2`

	if _, err := r.db.ExecContext(ctx, query, productID, tagID); err != nil {
		return fmt.Errorf("failed to detach tag from product: %w", err)
	}

	return nil
}

func (r *tagRepository) queryTags(ctx context.Context, query string, args ...interface{}) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		tag := &domain.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}
