package transport

import (
	"net/http"

	"catalog-service/internal/middleware"
	"catalog-service/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductImageRequest represents the image upload payload
type CreateProductImageRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	ImageURL  string `json:"image_url" validate:"required,url"`
	AltText   string `json:"alt_text"`
	SortOrder int    `json:"sort_order"`
	IsPrimary bool   `json:"is_primary"`
}

// UpdateProductImageRequest overwrites an image's metadata
type UpdateProductImageRequest struct {
	ImageURL  string `json:"image_url" validate:"required,url"`
	AltText   string `json:"alt_text"`
	SortOrder int    `json:"sort_order"`
}

// ProductImageHandler handles HTTP requests for product image operations
type ProductImageHandler struct {
	imageService service.ProductImageService
	logger       *zap.Logger
}

// NewProductImageHandler creates a new ProductImageHandler
func NewProductImageHandler(imageService service.ProductImageService, logger *zap.Logger) *ProductImageHandler {
	return &ProductImageHandler{
		imageService: imageService,
		logger:       logger,
	}
}

// RegisterRoutes registers all product image routes
func (h *ProductImageHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/product-images", func(r chi.Router) {
		r.Post("/create", h.Upload)
		r.Get("/{imageID}", h.GetByID)
		r.Put("/{imageID}", h.Update)
		r.Patch("/{imageID}/primary", h.SetPrimary)
		r.Delete("/{imageID}", h.Delete)
	})
	r.Route("/api/v1/products/{productID}/images", func(r chi.Router) {
		r.Get("/", h.ListByProduct)
		r.Get("/primary", h.GetPrimary)
	})
}

// Upload attaches a new image to a product
func (h *ProductImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req CreateProductImageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product image validation failed", zap.Error(err))
		respondBadRequest(w, err)
		return
	}

	productID, err := optionalUUID(&req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	image, err := h.imageService.Upload(r.Context(), service.CreateProductImageInput{
		ProductID: *productID,
		ImageURL:  req.ImageURL,
		AltText:   req.AltText,
		SortOrder: req.SortOrder,
		IsPrimary: req.IsPrimary,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product image uploaded",
		zap.String("image_id", image.ID.String()),
		zap.String("product_id", image.ProductID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, image)
}

// Update overwrites an image's metadata
func (h *ProductImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "imageID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	var req UpdateProductImageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	image, err := h.imageService.Update(r.Context(), id, service.UpdateProductImageInput{
		ImageURL:  req.ImageURL,
		AltText:   req.AltText,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, image)
}

// GetByID retrieves a product image
func (h *ProductImageHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "imageID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	image, err := h.imageService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, image)
}

// ListByProduct returns all images for a product
func (h *ProductImageHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	images, err := h.imageService.ListByProduct(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, images)
}

// GetPrimary returns the product's primary image
func (h *ProductImageHandler) GetPrimary(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	image, err := h.imageService.GetPrimaryByProduct(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, image)
}

// SetPrimary marks an image as its product's primary image
func (h *ProductImageHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "imageID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	image, err := h.imageService.SetPrimary(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, image)
}

// Delete removes a product image
func (h *ProductImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "imageID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	if err := h.imageService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
