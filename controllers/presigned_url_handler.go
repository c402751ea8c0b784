package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PresignedURLHandler issues presigned S3 uploads for product images
type PresignedURLHandler struct {
	service   ProductServiceAPI
	validator *RequestValidator
	timeout   time.Duration
}

func NewPresignedURLHandler(ps ProductServiceAPI) *PresignedURLHandler {
	return &PresignedURLHandler{
		service:   ps,
		validator: NewRequestValidator(),
		timeout:   DefaultContextTimeout,
	}
}

// PresignProductImage returns a presigned PUT URL for a new image of the product.
// The client uploads directly to storage and then adds the public URL to the product.
func (h *PresignedURLHandler) PresignProductImage(c *gin.Context) {
	id, err := h.validator.ParseID(c)
	if err != nil {
		badRequest(c, err.Error(), nil)
		return
	}
	req, expires, err := h.validator.ParsePresignRequest(c)
	if err != nil {
		badRequest(c, "Invalid presign request", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	upload, err := h.service.PresignImageUpload(ctx, id, req.Filename, req.ContentType, expires)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}
