package controllers

import (
	"context"
	"errors"
	"net/http"

	apperrors "catalog-service/common/errors"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		parseErr      *services.ParseError
		storageErr    *services.StorageError
	)

	switch {
	case errors.Is(err, services.ErrProductNotFound):
		apperrors.Respond(c, apperrors.NotFound("Product not found"))
	case errors.Is(err, services.ErrJobNotFound):
		apperrors.Respond(c, apperrors.NotFound("Job not found"))
	case errors.Is(err, services.ErrDuplicateProduct):
		apperrors.Respond(c, apperrors.Conflict("Product already exists", nil))
	case errors.Is(err, services.ErrNoUpdateFields):
		apperrors.Respond(c, apperrors.BadRequest("No update fields provided", nil))
	case errors.As(err, &validationErr):
		apperrors.Respond(c, apperrors.BadRequest("Validation failed", validationErr))
	case errors.As(err, &parseErr):
		apperrors.Respond(c, apperrors.BadRequest("Invalid CSV file", parseErr))
	case errors.As(err, &storageErr):
		zap.L().Error("Bulk insert failed", zap.Error(err))
		apperrors.Respond(c, apperrors.New(http.StatusInternalServerError, "Bulk insert failed", storageErr))
	case errors.Is(err, services.ErrImagesDisabled):
		apperrors.Respond(c, apperrors.New(http.StatusServiceUnavailable, "Image uploads are not configured", nil))
	case errors.Is(err, context.DeadlineExceeded):
		apperrors.Respond(c, apperrors.New(http.StatusGatewayTimeout, "Request timed out", nil))
	default:
		zap.L().Error("Service error", zap.Error(err))
		apperrors.Respond(c, apperrors.Internal("Internal server error", err))
	}
}

func badRequest(c *gin.Context, message string, err error) {
	apperrors.Respond(c, apperrors.BadRequest(message, err))
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "true"
	}
	return "false"
}
