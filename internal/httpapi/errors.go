package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/itinera/internal/itinerary"
	"github.com/UnknownOlympus/itinera/internal/places"
	"github.com/UnknownOlympus/itinera/internal/repository"
	"github.com/UnknownOlympus/itinera/internal/service"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates an APIError. Only the first detail is kept.
func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}

	return err
}

var (
	ErrInvalidInput      = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrNotFound          = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrTooManyRequests   = NewAPIError("TOO_MANY_REQUESTS", "Too many requests", http.StatusTooManyRequests)
	ErrPhotosUnsupported = NewAPIError("NOT_IMPLEMENTED", "Photos are not available", http.StatusNotImplemented)
	ErrProvider          = NewAPIError("BAD_GATEWAY", "Places provider failed", http.StatusBadGateway)
	ErrInternal          = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

// toAPIError classifies err. Unknown errors are internal.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var base *APIError
	switch {
	case errors.Is(err, repository.ErrKeyRequired),
		errors.Is(err, service.ErrTaskIndex),
		errors.Is(err, service.ErrEmptyTask),
		errors.Is(err, itinerary.ErrInvalidSchedule),
		errors.Is(err, places.ErrInvalidPlaceID):
		base = ErrInvalidInput
	case errors.Is(err, service.ErrPlaceNotAdded),
		errors.Is(err, places.ErrEmptyResponse):
		base = ErrNotFound
	case errors.Is(err, places.ErrPhotosUnsupported):
		base = ErrPhotosUnsupported
	case errors.Is(err, service.ErrProvider):
		base = ErrProvider
	default:
		base = ErrInternal
	}

	return NewAPIError(base.Code, base.Message, base.Status, err.Error())
}

// writeError sends err as an APIError. Server side failures are logged.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", apiErr.Code,
			"error", err)
	}

	writeJSON(w, apiErr.Status, apiErr)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
