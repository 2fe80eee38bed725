package domain

import (
	"time"

	"github.com/google/uuid"
)

// Inventory represents the stock of one product held at one warehouse
// location. A product may have any number of inventory records.
// Invariant: 0 <= ReservedQuantity <= Quantity.
type Inventory struct {
	ID                uuid.UUID `json:"id" db:"id"`
	ProductID         uuid.UUID `json:"product_id" db:"product_id"`
	Quantity          int       `json:"quantity" db:"quantity"`
	ReservedQuantity  int       `json:"reserved_quantity" db:"reserved_quantity"`
	ReorderLevel      int       `json:"reorder_level" db:"reorder_level"`
	WarehouseLocation string    `json:"warehouse_location" db:"warehouse_location"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Available returns the quantity not yet committed to a reservation.
func (i *Inventory) Available() int {
	return i.Quantity - i.ReservedQuantity
}

// LowStock reports whether the record is at or below its reorder level.
func (i *Inventory) LowStock() bool {
	return i.Quantity <= i.ReorderLevel
}
