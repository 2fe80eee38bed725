package transport

import (
	"net/http"

	"catalog-service/internal/middleware"
	"catalog-service/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateInventoryRequest represents the inventory creation payload
type CreateInventoryRequest struct {
	ProductID         string `json:"product_id" validate:"required,uuid"`
	Quantity          int    `json:"quantity" validate:"min=0"`
	ReservedQuantity  *int   `json:"reserved_quantity"`
	ReorderLevel      *int   `json:"reorder_level"`
	WarehouseLocation string `json:"warehouse_location"`
}

// UpdateInventoryRequest overwrites an inventory record's mutable fields
type UpdateInventoryRequest struct {
	ProductID         string `json:"product_id" validate:"required,uuid"`
	Quantity          int    `json:"quantity" validate:"min=0"`
	ReservedQuantity  int    `json:"reserved_quantity" validate:"min=0"`
	ReorderLevel      int    `json:"reorder_level" validate:"min=0"`
	WarehouseLocation string `json:"warehouse_location"`
}

// AdjustInventoryRequest carries the amount for reserve and release calls
type AdjustInventoryRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// QuantityResponse wraps a single aggregate quantity
type QuantityResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// InventoryHandler handles HTTP requests for inventory operations
type InventoryHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/inventories", func(r chi.Router) {
		r.Post("/create", h.Create)
		r.Get("/", h.ListAll)
		r.Get("/low-stock", h.LowStock)
		r.Get("/{inventoryID}", h.GetByID)
		r.Put("/{inventoryID}", h.Update)
		r.Delete("/{inventoryID}", h.Delete)

		r.Route("/product/{productID}", func(r chi.Router) {
			r.Get("/", h.ListByProduct)
			r.Get("/total", h.TotalQuantity)
			r.Get("/available", h.AvailableQuantity)
			r.Post("/reserve", h.Reserve)
			r.Post("/release", h.Release)
		})
	})
}

// Create handles inventory record creation
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInventoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Inventory validation failed", zap.Error(err))
		respondBadRequest(w, err)
		return
	}

	productID, err := optionalUUID(&req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	inv, err := h.inventoryService.Create(r.Context(), service.CreateInventoryInput{
		ProductID:         *productID,
		Quantity:          req.Quantity,
		ReservedQuantity:  req.ReservedQuantity,
		ReorderLevel:      req.ReorderLevel,
		WarehouseLocation: req.WarehouseLocation,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Inventory record created",
		zap.String("inventory_id", inv.ID.String()),
		zap.String("product_id", inv.ProductID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, inv)
}

// Update overwrites an inventory record
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "inventoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid inventory ID")
		return
	}

	var req UpdateInventoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Inventory validation failed", zap.Error(err))
		respondBadRequest(w, err)
		return
	}

	productID, err := optionalUUID(&req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	inv, err := h.inventoryService.Update(r.Context(), id, service.UpdateInventoryInput{
		ProductID:         *productID,
		Quantity:          req.Quantity,
		ReservedQuantity:  req.ReservedQuantity,
		ReorderLevel:      req.ReorderLevel,
		WarehouseLocation: req.WarehouseLocation,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, inv)
}

// Delete removes an inventory record
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "inventoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid inventory ID")
		return
	}

	if err := h.inventoryService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetByID retrieves a single inventory record
func (h *InventoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "inventoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid inventory ID")
		return
	}

	inv, err := h.inventoryService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, inv)
}

// ListAll returns every inventory record
func (h *InventoryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.inventoryService.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, records)
}

// ListByProduct returns all records holding stock for one product
func (h *InventoryHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	records, err := h.inventoryService.ListByProduct(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, records)
}

// LowStock returns records at or below their reorder level
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	records, err := h.inventoryService.LowStockItems(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, records)
}

// TotalQuantity returns the summed stock quantity for a product
func (h *InventoryHandler) TotalQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	total, err := h.inventoryService.TotalQuantity(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, QuantityResponse{
		ProductID: productID.String(),
		Quantity:  total,
	})
}

// AvailableQuantity returns the summed unreserved quantity for a product
func (h *InventoryHandler) AvailableQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	available, err := h.inventoryService.AvailableQuantity(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, QuantityResponse{
		ProductID: productID.String(),
		Quantity:  available,
	})
}

// Reserve allocates stock for a product across its inventory records
func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req AdjustInventoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	if err := h.inventoryService.Reserve(r.Context(), productID, req.Quantity); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Inventory reserved",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", req.Quantity),
	)
	w.WriteHeader(http.StatusNoContent)
}

// Release returns previously reserved stock to availability
func (h *InventoryHandler) Release(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req AdjustInventoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	if err := h.inventoryService.Release(r.Context(), productID, req.Quantity); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Inventory released",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", req.Quantity),
	)
	w.WriteHeader(http.StatusNoContent)
}
