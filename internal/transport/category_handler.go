package transport

import (
	"net/http"

	"catalog-service/internal/middleware"
	"catalog-service/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	Active      *bool   `json:"active"`
	SortOrder   int     `json:"sort_order"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
}

// UpdateCategoryRequest represents the partial category update payload.
// Absent fields are left unchanged.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	SortOrder   *int    `json:"sort_order"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Post("/create", h.Create)
		r.Get("/", h.ListAll)
		r.Get("/root", h.ListRoots)
		r.Get("/root/with-subcategories", h.ListRootsWithSubcategories)
		r.Get("/search", h.Search)
		r.Get("/{categoryID}", h.GetByID)
		r.Get("/{categoryID}/with-subcategories", h.GetWithSubcategories)
		r.Get("/{categoryID}/subcategories", h.GetChildren)
		r.Put("/{categoryID}", h.Update)
		r.Patch("/{categoryID}/activate", h.Activate)
		r.Patch("/{categoryID}/deactivate", h.Deactivate)
		r.Delete("/{categoryID}", h.Delete)
	})
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category validation failed", zap.Error(err))
		respondBadRequest(w, err)
		return
	}

	parentID, err := optionalUUID(req.ParentID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid parent ID")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	category, err := h.categoryService.Create(r.Context(), service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Active:      active,
		SortOrder:   req.SortOrder,
		ParentID:    parentID,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// Update handles partial category updates, including re-parenting
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "categoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	var req UpdateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category validation failed", zap.Error(err))
		respondBadRequest(w, err)
		return
	}

	parentID, err := optionalUUID(req.ParentID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid parent ID")
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, service.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		ParentID:    parentID,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// GetByID returns the flat category with derived hierarchy fields
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "categoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	category, err := h.categoryService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// GetWithSubcategories returns the category with its full active subtree
func (h *CategoryHandler) GetWithSubcategories(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "categoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	category, err := h.categoryService.GetWithSubcategories(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// GetChildren returns the immediate children as nested subtrees
func (h *CategoryHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "categoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	children, err := h.categoryService.GetChildren(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, children)
}

// ListAll returns every category as a tree node
func (h *CategoryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// ListRoots returns the active root categories, flat
func (h *CategoryHandler) ListRoots(w http.ResponseWriter, r *http.Request) {
	roots, err := h.categoryService.ListRoots(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, roots)
}

// ListRootsWithSubcategories returns the active root categories with their
// full active subtrees
func (h *CategoryHandler) ListRootsWithSubcategories(w http.ResponseWriter, r *http.Request) {
	roots, err := h.categoryService.ListRootsWithSubcategories(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, roots)
}

// Search returns categories matching the name pattern as tree nodes
func (h *CategoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	matches, err := h.categoryService.Search(r.Context(), name)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, matches)
}

// Activate re-enables a category
func (h *CategoryHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate soft-deletes a category without touching its descendants
func (h *CategoryHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *CategoryHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := pathUUID(r, "categoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	var category interface{}
	if active {
		category, err = h.categoryService.Activate(r.Context(), id)
	} else {
		category, err = h.categoryService.Deactivate(r.Context(), id)
	}
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Delete removes a category when it has no subcategories or active products
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "categoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Category deleted", zap.String("category_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
