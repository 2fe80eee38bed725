package service

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
)

// CreateProductImageInput carries the fields for a new product image.
type CreateProductImageInput struct {
	ProductID uuid.UUID
	ImageURL  string
	AltText   string
	SortOrder int
	IsPrimary bool
}

// UpdateProductImageInput overwrites an image's metadata.
type UpdateProductImageInput struct {
	ImageURL  string
	AltText   string
	SortOrder int
}

// ProductImageService defines the business logic for product images.
// At most one image per product carries the primary flag.
type ProductImageService interface {
	Upload(ctx context.Context, input CreateProductImageInput) (*domain.ProductImage, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductImageInput) (*domain.ProductImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
	GetPrimaryByProduct(ctx context.Context, productID uuid.UUID) (*domain.ProductImage, error)
	SetPrimary(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error)
}

type productImageService struct {
	imageRepo   repository.ProductImageRepository
	productRepo repository.ProductRepository
}

// NewProductImageService creates a new instance of ProductImageService
func NewProductImageService(imageRepo repository.ProductImageRepository, productRepo repository.ProductRepository) ProductImageService {
	return &productImageService{
		imageRepo:   imageRepo,
		productRepo: productRepo,
	}
}

// Upload attaches a new image to an existing product. When the image is
// marked primary, the primary flag is cleared on the product's other images
// first.
func (s *productImageService) Upload(ctx context.Context, input CreateProductImageInput) (*domain.ProductImage, error) {
	if err := s.requireProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	if input.IsPrimary {
		if err := s.imageRepo.UnsetPrimaryForProduct(ctx, input.ProductID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	image := &domain.ProductImage{
		ID:        uuid.New(),
		ProductID: input.ProductID,
		ImageURL:  input.ImageURL,
		AltText:   input.AltText,
		SortOrder: input.SortOrder,
		IsPrimary: input.IsPrimary,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.imageRepo.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to create product image: %w", err)
	}

	return image, nil
}

// Update overwrites the image metadata; the primary flag is managed through
// SetPrimary only
func (s *productImageService) Update(ctx context.Context, id uuid.UUID, input UpdateProductImageInput) (*domain.ProductImage, error) {
	image, err := s.imageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	image.ImageURL = input.ImageURL
	image.AltText = input.AltText
	image.SortOrder = input.SortOrder
	image.UpdatedAt = time.Now()

	if err := s.imageRepo.Update(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to update product image: %w", err)
	}

	return image, nil
}

// Delete removes a product image
func (s *productImageService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.imageRepo.FindByID(ctx, id); err != nil {
		return err
	}

	return s.imageRepo.Delete(ctx, id)
}

// GetByID retrieves a product image
func (s *productImageService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	return s.imageRepo.FindByID(ctx, id)
}

// ListByProduct retrieves all images for a product ordered by sort order
func (s *productImageService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}

	return s.imageRepo.FindByProductID(ctx, productID)
}

// GetPrimaryByProduct retrieves the product's primary image
func (s *productImageService) GetPrimaryByProduct(ctx context.Context, productID uuid.UUID) (*domain.ProductImage, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}

	return s.imageRepo.FindPrimaryByProductID(ctx, productID)
}

// SetPrimary marks one image as the product's primary image, clearing the
// flag on its siblings
func (s *productImageService) SetPrimary(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	image, err := s.imageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.imageRepo.UnsetPrimaryForProduct(ctx, image.ProductID); err != nil {
		return nil, err
	}

	image.IsPrimary = true
	image.UpdatedAt = time.Now()
	if err := s.imageRepo.Update(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to set primary image: %w", err)
	}

	return image, nil
}

func (s *productImageService) requireProduct(ctx context.Context, productID uuid.UUID) error {
	exists, err := s.productRepo.ExistsByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return repository.ErrProductNotFound
	}
	return nil
}
