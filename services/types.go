package services

import (
	"context"
	"time"

	awspkg "catalog-service/pkg/aws"

	"github.com/google/uuid"
)

// ListProductsParams contains parameters for listing products with filters
type ListProductsParams struct {
	Page     int
	PerPage  int
	Category string
	IsActive *bool
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// EventPublisher publishes catalog events, satisfied by the SNS client.
type EventPublisher interface {
	Publish(ctx context.Context, topicArn, eventType string, message []byte) error
}

// MetricsRecorder records business metrics, satisfied by the CloudWatch client.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, name string, dimensions map[string]string) error
	RecordValue(ctx context.Context, name string, value float64, dimensions map[string]string) error
}

// ImagePresigner issues direct-to-storage uploads for product images.
type ImagePresigner interface {
	PresignProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, expires time.Duration) (*awspkg.PresignedUpload, error)
}

// ProductsImportedEvent is published after a bulk import stores at least one product.
type ProductsImportedEvent struct {
	Event         string    `json:"event"`
	InsertedCount int       `json:"insertedCount"`
	ErrorCount    int       `json:"errorCount"`
	ImportedAt    time.Time `json:"importedAt"`
}

const EventProductsImported = "products.imported"
