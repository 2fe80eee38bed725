package service

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
)

// TagService defines the business logic for tags and product-tag links
type TagService interface {
	Create(ctx context.Context, name, color string) (*domain.Tag, error)
	Update(ctx context.Context, id uuid.UUID, name, color string) (*domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	ListAll(ctx context.Context) ([]*domain.Tag, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Tag, error)
	AttachToProduct(ctx context.Context, tagID, productID uuid.UUID) error
	DetachFromProduct(ctx context.Context, tagID, productID uuid.UUID) error
}

type tagService struct {
	tagRepo     repository.TagRepository
	productRepo repository.ProductRepository
}

// NewTagService creates a new instance of TagService
func NewTagService(tagRepo repository.TagRepository, productRepo repository.ProductRepository) TagService {
	return &tagService{
		tagRepo:     tagRepo,
		productRepo: productRepo,
	}
}

// Create persists a new tag
func (s *tagService) Create(ctx context.Context, name, color string) (*domain.Tag, error) {
	now := time.Now()
	tag := &domain.Tag{
		ID:        uuid.New(),
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

// Update renames or recolors an existing tag
func (s *tagService) Update(ctx context.Context, id uuid.UUID, name, color string) (*domain.Tag, error) {
	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tag.Name = name
	tag.Color = color
	tag.UpdatedAt = time.Now()

	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

// Delete removes a tag and all of its product links
func (s *tagService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.tagRepo.FindByID(ctx, id); err != nil {
		return err
	}

	return s.tagRepo.Delete(ctx, id)
}

// GetByID retrieves a tag
func (s *tagService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	return s.tagRepo.FindByID(ctx, id)
}

// ListAll retrieves every tag
func (s *tagService) ListAll(ctx context.Context) ([]*domain.Tag, error) {
	return s.tagRepo.FindAll(ctx)
}

// ListByProduct retrieves the tags attached to a product
func (s *tagService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Tag, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}

	return s.tagRepo.FindByProductID(ctx, productID)
}

// AttachToProduct links a tag to a product
func (s *tagService) AttachToProduct(ctx context.Context, tagID, productID uuid.UUID) error {
	if _, err := s.tagRepo.FindByID(ctx, tagID); err != nil {
		return err
	}
	if err := s.requireProduct(ctx, productID); err != nil {
		return err
	}

	return s.tagRepo.AttachToProduct(ctx, tagID, productID)
}

// DetachFromProduct removes the link between a tag and a product
func (s *tagService) DetachFromProduct(ctx context.Context, tagID, productID uuid.UUID) error {
	if _, err := s.tagRepo.FindByID(ctx, tagID); err != nil {
		return err
	}
	if err := s.requireProduct(ctx, productID); err != nil {
		return err
	}

	return s.tagRepo.DetachFromProduct(ctx, tagID, productID)
}

func (s *tagService) requireProduct(ctx context.Context, productID uuid.UUID) error {
	exists, err := s.productRepo.ExistsByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return repository.ErrProductNotFound
	}
	return nil
}
