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
	ErrInventoryNotFound = errors.New("inventory record not found")
)

const inventoryColumns = `id, product_id, quantity, reserved_quantity, reorder_level, warehouse_location, created_at, updated_at`

// AllocationTx is the unit of work for a multi-record reserve or release.
// LockRecords takes row locks on every record of the product so that
// concurrent allocations against the same product serialize; SaveReserved
// persists one record's new reserved quantity inside the transaction.
type AllocationTx interface {
	LockRecords(ctx context.Context, productID uuid.UUID) ([]*domain.Inventory, error)
	SaveReserved(ctx context.Context, id uuid.UUID, reservedQuantity int) error
	Commit() error
	Rollback() error
}

// InventoryRepository defines the interface for inventory data access
type InventoryRepository interface {
	Create(ctx context.Context, inv *domain.Inventory) error
	Update(ctx context.Context, inv *domain.Inventory) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error)
	FindAll(ctx context.Context) ([]*domain.Inventory, error)
	FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Inventory, error)
	FindLowStock(ctx context.Context) ([]*domain.Inventory, error)
	SumQuantityByProduct(ctx context.Context, productID uuid.UUID) (int, error)
	SumReservedByProduct(ctx context.Context, productID uuid.UUID) (int, error)
	BeginAllocation(ctx context.Context) (AllocationTx, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

// Create inserts a new inventory record using parameterized queries
func (r *inventoryRepository) Create(ctx context.Context, inv *domain.Inventory) error {
	query := `
		INSERT INTO inventory (id, product_id, quantity, reserved_quantity, reorder_level, warehouse_location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		inv.ID,
		inv.ProductID,
		inv.Quantity,
		inv.ReservedQuantity,
		inv.ReorderLevel,
		inv.WarehouseLocation,
		inv.CreatedAt,
		inv.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create inventory record: %w", err)
	}

	return nil
}

// Update overwrites an existing inventory record
func (r *inventoryRepository) Update(ctx context.Context, inv *domain.Inventory) error {
	query := `
		UPDATE inventory
		SET product_id = $2, quantity = $3, reserved_quantity = $4,
		    reorder_level = $5, warehouse_location = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		inv.ID,
		inv.ProductID,
		inv.Quantity,
		inv.ReservedQuantity,
		inv.ReorderLevel,
		inv.WarehouseLocation,
		inv.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update inventory record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInventoryNotFound
	}

	return nil
}

// Delete removes an inventory record
func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM inventory WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInventoryNotFound
	}

	return nil
}

// FindByID retrieves an inventory record by ID
func (r *inventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory WHERE id = $1`, inventoryColumns)

	inv := &domain.Inventory{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID,
		&inv.ProductID,
		&inv.Quantity,
		&inv.ReservedQuantity,
		&inv.ReorderLevel,
		&inv.WarehouseLocation,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to find inventory record by ID: %w", err)
	}

	return inv, nil
}

// FindAll retrieves every inventory record
func (r *inventoryRepository) FindAll(ctx context.Context) ([]*domain.Inventory, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory ORDER BY created_at ASC`, inventoryColumns)

	return r.queryInventory(ctx, r.db, query)
}

// FindByProductID retrieves all inventory records for a product
func (r *inventoryRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Inventory, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory WHERE product_id = $1 ORDER BY created_at ASC`, inventoryColumns)

	return r.queryInventory(ctx, r.db, query, productID)
}

// FindLowStock retrieves all records at or below their reorder level
func (r *inventoryRepository) FindLowStock(ctx context.Context) ([]*domain.Inventory, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory WHERE quantity <= reorder_level`, inventoryColumns)

	return r.queryInventory(ctx, r.db, query)
}

// SumQuantityByProduct returns the total quantity across all records for a
// product, 0 when the product has no records
func (r *inventoryRepository) SumQuantityByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM inventory WHERE product_id = $1`

	var total int
	if err := r.db.QueryRowContext(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum inventory quantity: %w", err)
	}

	return total, nil
}

// SumReservedByProduct returns the total reserved quantity across all records
// for a product, 0 when the product has no records
func (r *inventoryRepository) SumReservedByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(SUM(reserved_quantity), 0) FROM inventory WHERE product_id = $1`

	var total int
	if err := r.db.QueryRowContext(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum reserved quantity: %w", err)
	}

	return total, nil
}

// BeginAllocation starts the transaction backing a reserve or release call
func (r *inventoryRepository) BeginAllocation(ctx context.Context) (AllocationTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin allocation transaction: %w", err)
	}
	return &allocationTx{tx: tx, repo: r}, nil
}

type allocationTx struct {
	tx   *sql.Tx
	repo *inventoryRepository
}

// LockRecords retrieves all records for a product ordered by quantity
// descending, locking the rows for the lifetime of the transaction
func (a *allocationTx) LockRecords(ctx context.Context, productID uuid.UUID) ([]*domain.Inventory, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory WHERE product_id = $1 ORDER BY quantity DESC FOR UPDATE`, inventoryColumns)

	return a.repo.queryInventory(ctx, a.tx, query, productID)
}

// SaveReserved persists a new reserved quantity for one locked record
func (a *allocationTx) SaveReserved(ctx context.Context, id uuid.UUID, reservedQuantity int) error {
	query := `UPDATE inventory SET reserved_quantity = $2, updated_at = NOW() WHERE id = $1`

	result, err := a.tx.ExecContext(ctx, query, id, reservedQuantity)
	if err != nil {
		return fmt.Errorf("failed to save reserved quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInventoryNotFound
	}

	return nil
}

func (a *allocationTx) Commit() error {
	return a.tx.Commit()
}

func (a *allocationTx) Rollback() error {
	return a.tx.Rollback()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *inventoryRepository) queryInventory(ctx context.Context, q querier, query string, args ...interface{}) ([]*domain.Inventory, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	records := []*domain.Inventory{}
	for rows.Next() {
		inv := &domain.Inventory{}
		err := rows.Scan(
			&inv.ID,
			&inv.ProductID,
			&inv.Quantity,
			&inv.ReservedQuantity,
			&inv.ReorderLevel,
			&inv.WarehouseLocation,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory record: %w", err)
		}
		records = append(records, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory records: %w", err)
	}

	return records, nil
}
