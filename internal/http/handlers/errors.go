package handlers

import (
	"net/http"

	"travelwizards/internal/domain"
	"travelwizards/internal/http/middleware"
	"travelwizards/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsTransaction(err):
		utils.LogWarn(middleware.GetRequestID(c), "http", "transaction", err.Error())
		respondError(c, http.StatusServiceUnavailable, "transaction_failed", "the operation was rolled back, retry later", nil)
	default:
		utils.LogWarn(middleware.GetRequestID(c), "http", "internal", err.Error())
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
