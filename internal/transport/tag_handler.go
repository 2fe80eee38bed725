package transport

import (
	"net/http"

	"catalog-service/internal/middleware"
	"catalog-service/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TagRequest represents the tag create and update payload
type TagRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// TagHandler handles HTTP requests for tag operations
type TagHandler struct {
	tagService service.TagService
	logger     *zap.Logger
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tagService service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// RegisterRoutes registers all tag routes
func (h *TagHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/tags", func(r chi.Router) {
		r.Post("/create", h.Create)
		r.Get("/", h.ListAll)
		r.Get("/{tagID}", h.GetByID)
		r.Put("/{tagID}", h.Update)
		r.Delete("/{tagID}", h.Delete)
		r.Post("/{tagID}/products/{productID}", h.AttachToProduct)
		r.Delete("/{tagID}/products/{productID}", h.DetachFromProduct)
	})
	r.Get("/api/v1/products/{productID}/tags", h.ListByProduct)
}

// Create handles tag creation
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	tag, err := h.tagService.Create(r.Context(), req.Name, req.Color)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Tag created", zap.String("tag_id", tag.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, tag)
}

// Update renames or recolors a tag
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tagID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid tag ID")
		return
	}

	var req TagRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	tag, err := h.tagService.Update(r.Context(), id, req.Name, req.Color)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, tag)
}

// GetByID retrieves a tag
func (h *TagHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tagID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid tag ID")
		return
	}

	tag, err := h.tagService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, tag)
}

// ListAll returns every tag
func (h *TagHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, tags)
}

// ListByProduct returns the tags attached to a product
func (h *TagHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	tags, err := h.tagService.ListByProduct(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, tags)
}

// AttachToProduct links a tag to a product
func (h *TagHandler) AttachToProduct(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathUUID(r, "tagID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid tag ID")
		return
	}
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.tagService.AttachToProduct(r.Context(), tagID, productID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DetachFromProduct removes the link between a tag and a product
func (h *TagHandler) DetachFromProduct(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathUUID(r, "tagID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid tag ID")
		return
	}
	productID, err := pathUUID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.tagService.DetachFromProduct(r.Context(), tagID, productID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a tag and its product links
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tagID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid tag ID")
		return
	}

	if err := h.tagService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
