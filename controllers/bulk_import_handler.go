package controllers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	apperrors "catalog-service/common/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BulkImportHandler handles bulk product import operations
type BulkImportHandler struct {
	service   ProductServiceAPI
	jobs      ImportJobAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

// NewBulkImportHandler builds the handler. jobs may be nil, which disables async imports.
func NewBulkImportHandler(ps ProductServiceAPI, jobs ImportJobAPI, cache *CacheManager) *BulkImportHandler {
	return &BulkImportHandler{
		service:   ps,
		jobs:      jobs,
		cache:     cache,
		validator: NewRequestValidator(),
		timeout:   BulkImportTimeout,
	}
}

// CreateBulkProducts imports products from an uploaded CSV file. With
// ?async=true the file is queued and a job id is returned instead.
func (h *BulkImportHandler) CreateBulkProducts(c *gin.Context) {
	async := strings.EqualFold(strings.TrimSpace(c.Query("async")), "true")
	if async && h.jobs == nil {
		apperrors.Respond(c, apperrors.New(http.StatusServiceUnavailable, "Async import is not available", nil))
		return
	}

	file, err := h.getAndValidateFile(c)
	if err != nil {
		badRequest(c, "Invalid upload", err)
		return
	}

	fh, err := file.Open()
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to open file", err))
		return
	}
	defer fh.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	key, err := h.service.SaveUpload(ctx, fh)
	if err != nil {
		zap.L().Error("Failed to stage upload", zap.Error(err))
		apperrors.Respond(c, apperrors.Internal("Failed to store upload", err))
		return
	}

	if async {
		h.enqueue(c, ctx, key)
		return
	}

	result, err := h.service.ImportUpload(ctx, key)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if result.InsertedCount > 0 {
		if err := h.cache.Invalidate(ctx); err != nil {
			zap.L().Warn("Failed to invalidate cache after import", zap.Error(err))
		}
	}
	zap.L().Info("Bulk import completed",
		zap.Int("inserted", result.InsertedCount),
		zap.Int("errors", result.ErrorCount))
	c.JSON(http.StatusOK, result)
}

func (h *BulkImportHandler) enqueue(c *gin.Context, ctx context.Context, key string) {
	job, err := h.jobs.Enqueue(ctx, key)
	if err != nil {
		zap.L().Error("Failed to enqueue import job", zap.Error(err))
		if rmErr := h.service.DiscardUpload(context.WithoutCancel(ctx), key); rmErr != nil {
			zap.L().Warn("Failed to discard upload", zap.String("key", key), zap.Error(rmErr))
		}
		apperrors.Respond(c, apperrors.Internal("Failed to queue import", err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Import queued",
		"jobId":   job.ID,
		"status":  job.Status,
	})
}

// GetBulkImportJobStatus returns the status and, once finished, the outcome of an async import.
func (h *BulkImportHandler) GetBulkImportJobStatus(c *gin.Context) {
	if h.jobs == nil {
		apperrors.Respond(c, apperrors.New(http.StatusServiceUnavailable, "Async import is not available", nil))
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		badRequest(c, "Job ID required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	job, err := h.jobs.Get(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *BulkImportHandler) getAndValidateFile(c *gin.Context) (*multipart.FileHeader, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+1<<20)

	file, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, fmt.Errorf("file too large (max %dMB)", MaxUploadSize/(1024*1024))
	}
	if err != nil {
		return nil, errors.New("a CSV file is required in the 'file' field")
	}
	if !h.validator.IsValidCSVFile(file) {
		return nil, errors.New("only CSV files are allowed")
	}
	if err := h.validator.ValidateFileSize(file); err != nil {
		return nil, err
	}
	return file, nil
}
