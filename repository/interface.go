package repository

import (
	"context"
	"errors"

	"catalog-service/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// ListFilter narrows a product listing. Zero values mean "no constraint".
type ListFilter struct {
	Category string
	IsActive *bool
	Limit    int
	Skip     int
}

// ProductRepo defines the operations used by catalog-service.
// This interface uses plain Go types (no driver types) to make swapping adapters easier.
// Update maps are keyed by stored field names (name, slug, price, is_active, updated_at, ...).
type ProductRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	// Find returns products newest first.
	Find(ctx context.Context, filter ListFilter) ([]*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// InsertMany writes all products in one bulk operation and reports how many were stored.
	// An empty slice is a successful no-op.
	InsertMany(ctx context.Context, products []models.Product) (int, error)
	FindByIDAndUpdate(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Product, error)
	FindByIDAndDelete(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// FindExistingSlugs returns the subset of slugs already taken.
	FindExistingSlugs(ctx context.Context, slugs []string) ([]string, error)
	EnsureIndexes(ctx context.Context) error
}
