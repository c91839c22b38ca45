package v1

import (
	"errors"
	"net/http"

	"github.com/buildsite/backend/internal/analysis"
	"github.com/buildsite/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, models.ErrForbidden) {
		return http.StatusForbidden
	}

	if errors.Is(err, analysis.ErrUnavailable) {
		return http.StatusBadGateway
	}

	return http.StatusBadRequest
}

var (
	errUserIDRequired = errors.New("the X-User-ID header must be set to a valid UUID")
	errNoFilePost     = errors.New("you must send a file to this endpoint")
)
