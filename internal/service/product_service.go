package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
)

// CreateProductInput carries the fields for a new product.
type CreateProductInput struct {
	Name            string
	Description     string
	SKU             string
	Price           float64
	DiscountedPrice *float64
	Brand           string
	Model           string
	Weight          *float64
	Active          bool
	Featured        bool
	CategoryID      *uuid.UUID
}

// UpdateProductInput is a partial update: nil fields are left unchanged.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	SKU             *string
	Price           *float64
	DiscountedPrice *float64
	Brand           *string
	Model           *string
	Weight          *float64
	Active          *bool
	Featured        *bool
	CategoryID      *uuid.UUID
}

// ProductService defines the business logic for products
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Create persists a new product, validating the category reference when one
// is supplied
func (s *productService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	product := &domain.Product{
		ID:              uuid.New(),
		Name:            input.Name,
		Description:     input.Description,
		SKU:             input.SKU,
		Price:           input.Price,
		DiscountedPrice: input.DiscountedPrice,
		Brand:           input.Brand,
		Model:           input.Model,
		Weight:          input.Weight,
		Active:          input.Active,
		Featured:        input.Featured,
		CategoryID:      input.CategoryID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update applies a partial update to an existing product
func (s *productService) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.DiscountedPrice != nil {
		product.DiscountedPrice = input.DiscountedPrice
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Model != nil {
		product.Model = *input.Model
	}
	if input.Weight != nil {
		product.Weight = input.Weight
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a product
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.productRepo.Delete(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return err
}

// GetByID retrieves a product
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves products with optional category filtering, pagination and sorting
func (s *productService) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
}

// Search searches products by name or description
func (s *productService) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.Search(ctx, query, page, pageSize)
}
