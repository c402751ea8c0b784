package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"catalog-service/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Validation constants
const (
	MaxPageSize   = 100
	MaxPageNumber = 1000000
	MaxUploadSize = 50 * 1024 * 1024 // 50MB

	DefaultPresignExpiry = 15 * time.Minute
	MaxPresignExpiry     = time.Hour
)

var (
	allowedCSVExtensions = map[string]bool{
		".csv": true,
	}

	allowedCSVContentTypes = map[string]bool{
		"text/csv":                 true,
		"application/csv":          true,
		"application/vnd.ms-excel": true,
	}

	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
)

// ListFilters are the optional listing filters from the query string.
type ListFilters struct {
	Category string
	Active   *bool
}

// PresignRequest is the JSON body accepted by the image presign endpoint.
type PresignRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	ExpiresIn   int64  `json:"expiresIn" validate:"omitempty,gte=60"`
}

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// ParsePagination validates and parses pagination parameters
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, errors.New("invalid page number")
	}
	if page > MaxPageNumber {
		page = MaxPageNumber
	}

	perPage, err := strconv.Atoi(c.DefaultQuery("perPage", "10"))
	if err != nil || perPage < 1 {
		return 0, 0, errors.New("invalid page size")
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}
	return page, perPage, nil
}

func (rv *RequestValidator) ParseFilters(c *gin.Context) (*ListFilters, error) {
	filters := &ListFilters{Category: strings.TrimSpace(c.Query("category"))}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("invalid boolean value for 'active'")
		}
		filters.Active = &active
	}
	return filters, nil
}

// ParseID parses the :id path parameter.
func (rv *RequestValidator) ParseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.New("invalid product ID format")
	}
	return id, nil
}

func (rv *RequestValidator) ParseCreateProductRequest(c *gin.Context) (models.CreateProductRequest, error) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := rv.validate.Struct(&req); err != nil {
		return req, fmt.Errorf("validation failed: %w", err)
	}
	return req, nil
}

func (rv *RequestValidator) ParseUpdateProductRequest(c *gin.Context) (models.UpdateProductRequest, error) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := rv.validate.Struct(&req); err != nil {
		return req, fmt.Errorf("validation failed: %w", err)
	}
	return req, nil
}

// ParsePresignRequest validates the body and returns the requested expiry.
func (rv *RequestValidator) ParsePresignRequest(c *gin.Context) (PresignRequest, time.Duration, error) {
	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, 0, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := rv.validate.Struct(&req); err != nil {
		return req, 0, fmt.Errorf("validation failed: %w", err)
	}
	if !allowedImageTypes[strings.ToLower(req.ContentType)] {
		return req, 0, fmt.Errorf("invalid content type %q", req.ContentType)
	}

	expires := DefaultPresignExpiry
	if req.ExpiresIn > 0 {
		expires = time.Duration(req.ExpiresIn) * time.Second
	}
	if expires > MaxPresignExpiry {
		expires = MaxPresignExpiry
	}
	return req, expires, nil
}

// IsValidCSVFile accepts a .csv name, or a CSV content type when the name has no extension.
func (rv *RequestValidator) IsValidCSVFile(file *multipart.FileHeader) bool {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != "" {
		return allowedCSVExtensions[ext]
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(file.Header.Get("Content-Type"), ";")[0]))
	return allowedCSVContentTypes[contentType]
}

// ValidateFileSize checks if file size is within limits
func (rv *RequestValidator) ValidateFileSize(file *multipart.FileHeader) error {
	if file.Size > MaxUploadSize {
		return fmt.Errorf("file too large (max %dMB)", MaxUploadSize/(1024*1024))
	}
	return nil
}
