package transport

import (
	"net/http"
	"strconv"
	"strings"

	"catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description"`
	SKU             string   `json:"sku" validate:"required"`
	Price           float64  `json:"price" validate:"required,gt=0"`
	DiscountedPrice *float64 `json:"discounted_price" validate:"omitempty,gt=0"`
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Weight          *float64 `json:"weight" validate:"omitempty,gt=0"`
	Active          *bool    `json:"active"`
	Featured        bool     `json:"featured"`
	CategoryID      *string  `json:"category_id" validate:"omitempty,uuid"`
}

// UpdateProductRequest represents the partial product update payload.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	SKU             *string  `json:"sku"`
	Price           *float64 `json:"price" validate:"omitempty,gt=0"`
	DiscountedPrice *float64 `json:"discounted_price" validate:"omitempty,gt=0"`
	Brand           *string  `json:"brand"`
	Model           *string  `json:"model"`
	Weight          *float64 `json:"weight" validate:"omitempty,gt=0"`
	Active          *bool    `json:"active"`
	Featured        *bool    `json:"featured"`
	CategoryID      *string  `json:"category_id" validate:"omitempty,uuid"`
}

// PaginatedResponse wraps a page of results with its paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int         `json:"total_count"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Post("/create", h.Create)
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/{productID}", h.GetByID)
		r.Put("/{productID}", h.Update)
		r.Delete("/{productID}", h.Delete)
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		respondBadRequest(w, err)
		return
	}

	categoryID, err := optionalUUID(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product, err := h.productService.Create(r.Context(), service.CreateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		SKU:             req.SKU,
		Price:           req.Price,
		DiscountedPrice: req.DiscountedPrice,
		Brand:           req.Brand,
		Model:           req.Model,
		Weight:          req.Weight,
		Active:          active,
		Featured:        req.Featured,
		CategoryID:      categoryID,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update applies a partial update to a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		respondBadRequest(w, err)
		return
	}

	categoryID, err := optionalUUID(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	product, err := h.productService.Update(r.Context(), id, service.UpdateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		SKU:             req.SKU,
		Price:           req.Price,
		DiscountedPrice: req.DiscountedPrice,
		Brand:           req.Brand,
		Model:           req.Model,
		Weight:          req.Weight,
		Active:          req.Active,
		Featured:        req.Featured,
		CategoryID:      categoryID,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetByID retrieves a product
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// List returns a page of products, optionally filtered by category
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)

	categoryID, err := optionalUUIDQuery(r, "category_id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	sortBy := r.URL.Query().Get("sort_by")
	sortOrder := repository.SortOrderDesc
	if strings.EqualFold(r.URL.Query().Get("sort_order"), "asc") {
		sortOrder = repository.SortOrderAsc
	}

	products, total, err := h.productService.List(r.Context(), categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PaginatedResponse{
		Data:       products,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}

// Search returns a page of products matching the query by name or description
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	page, pageSize := paginationParams(r)

	products, total, err := h.productService.Search(r.Context(), query, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PaginatedResponse{
		Data:       products,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}

// Delete removes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func paginationParams(r *http.Request) (page, pageSize int) {
	page = defaultPage
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}

	pageSize = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize
}
