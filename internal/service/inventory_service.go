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

const (
	// DefaultReorderLevel applies when a new record does not specify one
	DefaultReorderLevel = 10
)

var (
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidInventoryState = errors.New("reserved quantity must be between 0 and quantity")
	ErrInsufficientInventory = errors.New("insufficient inventory to reserve")
)

// CreateInventoryInput carries the fields for a new inventory record.
// ReservedQuantity defaults to 0 and ReorderLevel to DefaultReorderLevel
// when nil.
type CreateInventoryInput struct {
	ProductID         uuid.UUID
	Quantity          int
	ReservedQuantity  *int
	ReorderLevel      *int
	WarehouseLocation string
}

// UpdateInventoryInput is a full overwrite of a record's mutable fields.
type UpdateInventoryInput struct {
	ProductID         uuid.UUID
	Quantity          int
	ReservedQuantity  int
	ReorderLevel      int
	WarehouseLocation string
}

// InventoryService maintains the reserved-quantity invariant across the
// stock records of a product and answers aggregate queries.
type InventoryService interface {
	Create(ctx context.Context, input CreateInventoryInput) (*domain.Inventory, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInventoryInput) (*domain.Inventory, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error)
	ListAll(ctx context.Context) ([]*domain.Inventory, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Inventory, error)
	LowStockItems(ctx context.Context) ([]*domain.Inventory, error)
	TotalQuantity(ctx context.Context, productID uuid.UUID) (int, error)
	AvailableQuantity(ctx context.Context, productID uuid.UUID) (int, error)
	Reserve(ctx context.Context, productID uuid.UUID, amount int) error
	Release(ctx context.Context, productID uuid.UUID, amount int) error
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	productRepo   repository.ProductRepository
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(inventoryRepo repository.InventoryRepository, productRepo repository.ProductRepository) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
	}
}

// Create binds a new stock record to an existing product, applying defaults
// for the optional fields
func (s *inventoryService) Create(ctx context.Context, input CreateInventoryInput) (*domain.Inventory, error) {
	if err := s.requireProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	reserved := 0
	if input.ReservedQuantity != nil {
		reserved = *input.ReservedQuantity
	}
	reorderLevel := DefaultReorderLevel
	if input.ReorderLevel != nil {
		reorderLevel = *input.ReorderLevel
	}

	if err := validateCounters(input.Quantity, reserved); err != nil {
		return nil, err
	}

	now := time.Now()
	inv := &domain.Inventory{
		ID:                uuid.New(),
		ProductID:         input.ProductID,
		Quantity:          input.Quantity,
		ReservedQuantity:  reserved,
		ReorderLevel:      reorderLevel,
		WarehouseLocation: input.WarehouseLocation,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.inventoryRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create inventory record: %w", err)
	}

	return inv, nil
}

// Update overwrites the record's quantity, reserved quantity, reorder level
// and location, and re-binds the product reference
func (s *inventoryService) Update(ctx context.Context, id uuid.UUID, input UpdateInventoryInput) (*domain.Inventory, error) {
	if err := s.requireProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	inv, err := s.inventoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateCounters(input.Quantity, input.ReservedQuantity); err != nil {
		return nil, err
	}

	inv.ProductID = input.ProductID
	inv.Quantity = input.Quantity
	inv.ReservedQuantity = input.ReservedQuantity
	inv.ReorderLevel = input.ReorderLevel
	inv.WarehouseLocation = input.WarehouseLocation
	inv.UpdatedAt = time.Now()

	if err := s.inventoryRepo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update inventory record: %w", err)
	}

	return inv, nil
}

// Delete removes a single inventory record
func (s *inventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.inventoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	return s.inventoryRepo.Delete(ctx, id)
}

// GetByID retrieves an inventory record
func (s *inventoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	return s.inventoryRepo.FindByID(ctx, id)
}

// ListAll retrieves every inventory record
func (s *inventoryService) ListAll(ctx context.Context) ([]*domain.Inventory, error) {
	return s.inventoryRepo.FindAll(ctx)
}

// ListByProduct retrieves all records for one product
func (s *inventoryService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Inventory, error) {
	return s.inventoryRepo.FindByProductID(ctx, productID)
}

// LowStockItems retrieves all records at or below their reorder level
func (s *inventoryService) LowStockItems(ctx context.Context) ([]*domain.Inventory, error) {
	return s.inventoryRepo.FindLowStock(ctx)
}

// TotalQuantity sums quantity across the product's records; a product with
// no records totals 0
func (s *inventoryService) TotalQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	return s.inventoryRepo.SumQuantityByProduct(ctx, productID)
}

// AvailableQuantity is the total quantity minus the total reserved quantity
func (s *inventoryService) AvailableQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	total, err := s.inventoryRepo.SumQuantityByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}

	reserved, err := s.inventoryRepo.SumReservedByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}

	return total - reserved, nil
}

// Reserve allocates amount across the product's stock records, draining the
// largest piles first. Each record's reservation is persisted as it is made;
// when the records cannot cover the full amount the call fails with
// ErrInsufficientInventory but the reservations already made are kept.
func (s *inventoryService) Reserve(ctx context.Context, productID uuid.UUID, amount int) error {
	if amount <= 0 {
		return ErrInvalidQuantity
	}

	tx, err := s.inventoryRepo.BeginAllocation(ctx)
	if err != nil {
		return err
	}

	records, err := tx.LockRecords(ctx, productID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if len(records) == 0 {
		tx.Rollback()
		return repository.ErrInventoryNotFound
	}

	remaining := amount
	for _, inv := range records {
		if remaining <= 0 {
			break
		}

		available := inv.Quantity - inv.ReservedQuantity
		if available <= 0 {
			continue
		}

		toReserve := min(remaining, available)
		inv.ReservedQuantity += toReserve
		if err := tx.SaveReserved(ctx, inv.ID, inv.ReservedQuantity); err != nil {
			tx.Rollback()
			return err
		}
		remaining -= toReserve
	}

	// Partial reservations are committed even when the amount could not be
	// fully covered.
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}

	if remaining > 0 {
		return ErrInsufficientInventory
	}

	return nil
}

// Release returns up to amount of reserved stock to availability, walking
// records in the same order reserve uses. Releasing more than is reserved in
// total drops the excess without error.
func (s *inventoryService) Release(ctx context.Context, productID uuid.UUID, amount int) error {
	tx, err := s.inventoryRepo.BeginAllocation(ctx)
	if err != nil {
		return err
	}

	records, err := tx.LockRecords(ctx, productID)
	if err != nil {
		tx.Rollback()
		return err
	}

	remaining := amount
	for _, inv := range records {
		if remaining <= 0 {
			break
		}

		if inv.ReservedQuantity <= 0 {
			continue
		}

		toRelease := min(remaining, inv.ReservedQuantity)
		inv.ReservedQuantity -= toRelease
		if err := tx.SaveReserved(ctx, inv.ID, inv.ReservedQuantity); err != nil {
			tx.Rollback()
			return err
		}
		remaining -= toRelease
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit release: %w", err)
	}

	return nil
}

func (s *inventoryService) requireProduct(ctx context.Context, productID uuid.UUID) error {
	exists, err := s.productRepo.ExistsByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return repository.ErrProductNotFound
	}
	return nil
}

func validateCounters(quantity, reserved int) error {
	if quantity < 0 || reserved < 0 || reserved > quantity {
		return ErrInvalidInventoryState
	}
	return nil
}
