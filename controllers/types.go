package controllers

import (
	"context"
	"io"
	"time"

	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/services"

	"github.com/google/uuid"
)

// Config holds controller configuration
type Config struct {
	CacheTTL       time.Duration
	ContextTimeout time.Duration
}

// Default configuration values
const (
	DefaultCacheTTL       = 10 * time.Minute
	DefaultContextTimeout = 30 * time.Second
	BulkImportTimeout     = 5 * time.Minute
)

// ProductServiceAPI defines the interface for product service operations
type ProductServiceAPI interface {
	ListProducts(ctx context.Context, params services.ListProductsParams) ([]*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req models.UpdateProductRequest) (*models.Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	SaveUpload(ctx context.Context, r io.Reader) (string, error)
	DiscardUpload(ctx context.Context, key string) error
	ImportUpload(ctx context.Context, key string) (*models.BulkImportResult, error)

	PresignImageUpload(ctx context.Context, id uuid.UUID, filename, contentType string, expires time.Duration) (*awspkg.PresignedUpload, error)
}

// ImportJobAPI queues async imports and reports their status.
type ImportJobAPI interface {
	Enqueue(ctx context.Context, uploadKey string) (*models.ImportJob, error)
	Get(ctx context.Context, id string) (*models.ImportJob, error)
}
