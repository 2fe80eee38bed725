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
	ErrProductImageNotFound = errors.New("product image not found")
	ErrPrimaryImageNotFound = errors.New("primary image not found")
)

const productImageColumns = `id, product_id, image_url, alt_text, sort_order, is_primary, created_at, updated_at`

// ProductImageRepository defines the interface for product image data access
type ProductImageRepository interface {
	Create(ctx context.Context, image *domain.ProductImage) error
	Update(ctx context.Context, image *domain.ProductImage) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error)
	FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
	FindPrimaryByProductID(ctx context.Context, productID uuid.UUID) (*domain.ProductImage, error)
	UnsetPrimaryForProduct(ctx context.Context, productID uuid.UUID) error
}

type productImageRepository struct {
	db *sql.DB
}

// NewProductImageRepository creates a new instance of ProductImageRepository
func NewProductImageRepository(db *sql.DB) ProductImageRepository {
	return &productImageRepository{db: db}
}

// Create inserts a new product image
func (r *productImageRepository) Create(ctx context.Context, image *domain.ProductImage) error {
	query := `
		INSERT INTO product_images (id, product_id, image_url, alt_text, sort_order, is_primary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		image.ID,
		image.ProductID,
		image.ImageURL,
		image.AltText,
		image.SortOrder,
		image.IsPrimary,
		image.CreatedAt,
		image.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product image: %w", err)
	}

	return nil
}

// Update updates an existing product image
func (r *productImageRepository) Update(ctx context.Context, image *domain.ProductImage) error {
	query := `
		UPDATE product_images
		SET product_id = $2, image_url = $3, alt_text = $4, sort_order = $5,
		    is_primary = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		image.ID,
		image.ProductID,
		image.ImageURL,
		image.AltText,
		image.SortOrder,
		image.IsPrimary,
		image.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductImageNotFound
	}

	return nil
}

// Delete removes a product image
func (r *productImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM product_images WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductImageNotFound
	}

	return nil
}

// FindByID retrieves a product image by ID
func (r *productImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_images WHERE id = $1`, productImageColumns)

	return r.scanOne(r.db.QueryRowContext(ctx, query, id), ErrProductImageNotFound)
}

// FindByProductID retrieves all images for a product ordered by sort_order
func (r *productImageRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_images WHERE product_id = $1 ORDER BY sort_order ASC`, productImageColumns)

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	images := []*domain.ProductImage{}
	for rows.Next() {
		image := &domain.ProductImage{}
		err := rows.Scan(
			&image.ID,
			&image.ProductID,
			&image.ImageURL,
			&image.AltText,
			&image.SortOrder,
			&image.IsPrimary,
			&image.CreatedAt,
			&image.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, image)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}

// FindPrimaryByProductID retrieves the primary image for a product
func (r *productImageRepository) FindPrimaryByProductID(ctx context.Context, productID uuid.UUID) (*domain.ProductImage, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_images WHERE product_id = $1 AND is_primary = true`, productImageColumns)

	return r.scanOne(r.db.QueryRowContext(ctx, query, productID), ErrPrimaryImageNotFound)
}

// UnsetPrimaryForProduct clears the primary flag on every image of a product
func (r *productImageRepository) UnsetPrimaryForProduct(ctx context.Context, productID uuid.UUID) error {
	query := `UPDATE product_images SET is_primary = false, updated_at = NOW() WHERE product_id = $1 AND is_primary = true`

	if _, err := r.db.ExecContext(ctx, query, productID); err != nil {
		return fmt.Errorf("failed to unset primary image: %w", err)
	}

	return nil
}

func (r *productImageRepository) scanOne(row *sql.Row, notFound error) (*domain.ProductImage, error) {
	image := &domain.ProductImage{}
	err := row.Scan(
		&image.ID,
		&image.ProductID,
		&image.ImageURL,
		&image.AltText,
		&image.SortOrder,
		&image.IsPrimary,
		&image.CreatedAt,
		&image.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to scan product image: %w", err)
	}

	return image, nil
}
