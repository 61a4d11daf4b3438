package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/cardforge/api/internal/apperr"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform error body on all failure paths.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// PaginationDTO accompanies list responses.
type PaginationDTO struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// respondError maps a tagged service error onto an HTTP response. Internal
// detail never reaches the client except for validation details.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("internal server error", err)
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: appErr.Message, Details: appErr.Details})
	case apperr.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: appErr.Message})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: appErr.Message})
	case apperr.KindUnavailable:
		log.Printf("[API] upstream unavailable: %v", appErr)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service temporarily unavailable"})
	default:
		log.Printf("[API] internal error: %v", appErr)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
