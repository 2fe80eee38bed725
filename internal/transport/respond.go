package transport

import (
	"errors"
	"net/http"

	"catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondServiceError maps the service and repository sentinel errors onto
// HTTP status codes; anything unrecognized becomes a 500
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrInventoryNotFound),
		errors.Is(err, repository.ErrTagNotFound),
		errors.Is(err, repository.ErrProductImageNotFound),
		errors.Is(err, repository.ErrPrimaryImageNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrCategoryNameExists),
		errors.Is(err, service.ErrCategoryHasChildren),
		errors.Is(err, service.ErrCategoryHasProducts),
		errors.Is(err, repository.ErrTagAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrSelfParent),
		errors.Is(err, service.ErrDescendantParent),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidInventoryState),
		errors.Is(err, service.ErrInsufficientInventory):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())

	default:
		logger.Error("Request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondBadRequest handles decode/validation failures uniformly
func respondBadRequest(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

// pathUUID parses a UUID path parameter
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// optionalUUIDQuery parses an optional UUID query parameter
func optionalUUIDQuery(r *http.Request, name string) (*uuid.UUID, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// optionalUUID parses an optional UUID string field into a pointer
func optionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
