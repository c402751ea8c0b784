package controllers

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/services"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type fakeProductService struct {
	lastParams services.ListProductsParams
	discarded  []string

	listProductsFn  func(ctx context.Context, params services.ListProductsParams) ([]*models.Product, error)
	getProductFn    func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	getBySlugFn     func(ctx context.Context, slug string) (*models.Product, error)
	createProductFn func(ctx context.Context, req models.CreateProductRequest) (*models.Product, error)
	updateProductFn func(ctx context.Context, id uuid.UUID, req models.UpdateProductRequest) (*models.Product, error)
	deactivateFn    func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	deleteProductFn func(ctx context.Context, id uuid.UUID) error
	saveUploadFn    func(ctx context.Context, r io.Reader) (string, error)
	importUploadFn  func(ctx context.Context, key string) (*models.BulkImportResult, error)
	presignFn       func(ctx context.Context, id uuid.UUID, filename, contentType string, expires time.Duration) (*awspkg.PresignedUpload, error)
}

func (f *fakeProductService) ListProducts(ctx context.Context, params services.ListProductsParams) ([]*models.Product, error) {
	f.lastParams = params
	if f.listProductsFn != nil {
		return f.listProductsFn(ctx, params)
	}
	return []*models.Product{}, nil
}

func (f *fakeProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if f.getProductFn != nil {
		return f.getProductFn(ctx, id)
	}
	return nil, services.ErrProductNotFound
}

func (f *fakeProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if f.getBySlugFn != nil {
		return f.getBySlugFn(ctx, slug)
	}
	return nil, services.ErrProductNotFound
}

func (f *fakeProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if f.createProductFn != nil {
		return f.createProductFn(ctx, req)
	}
	return &models.Product{ID: uuid.New(), Name: req.Name}, nil
}

func (f *fakeProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req models.UpdateProductRequest) (*models.Product, error) {
	if f.updateProductFn != nil {
		return f.updateProductFn(ctx, id, req)
	}
	return &models.Product{ID: id}, nil
}

func (f *fakeProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, id)
	}
	return &models.Product{ID: id}, nil
}

func (f *fakeProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if f.deleteProductFn != nil {
		return f.deleteProductFn(ctx, id)
	}
	return nil
}

func (f *fakeProductService) SaveUpload(ctx context.Context, r io.Reader) (string, error) {
	if f.saveUploadFn != nil {
		return f.saveUploadFn(ctx, r)
	}
	_, err := io.Copy(io.Discard, r)
	return "upload-1.csv", err
}

func (f *fakeProductService) DiscardUpload(ctx context.Context, key string) error {
	f.discarded = append(f.discarded, key)
	return nil
}

func (f *fakeProductService) ImportUpload(ctx context.Context, key string) (*models.BulkImportResult, error) {
	if f.importUploadFn != nil {
		return f.importUploadFn(ctx, key)
	}
	return &models.BulkImportResult{Message: "Bulk upload completed", Errors: []models.RowError{}}, nil
}

func (f *fakeProductService) PresignImageUpload(ctx context.Context, id uuid.UUID, filename, contentType string, expires time.Duration) (*awspkg.PresignedUpload, error) {
	if f.presignFn != nil {
		return f.presignFn(ctx, id, filename, contentType, expires)
	}
	return nil, services.ErrImagesDisabled
}

type fakeJobs struct {
	enqueued   []string
	enqueueErr error
	jobs       map[string]*models.ImportJob
}

func (f *fakeJobs) Enqueue(ctx context.Context, uploadKey string) (*models.ImportJob, error) {
	if f.enqueueErr != nil {
		return nil, f.enqueueErr
	}
	f.enqueued = append(f.enqueued, uploadKey)
	return &models.ImportJob{ID: "job-1", Status: models.JobPending, UploadKey: uploadKey}, nil
}

func (f *fakeJobs) Get(ctx context.Context, id string) (*models.ImportJob, error) {
	if job, ok := f.jobs[id]; ok {
		return job, nil
	}
	return nil, services.ErrJobNotFound
}

// newTestRedisClient returns a client whose every command fails, so the cache always misses.
func newTestRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       "localhost:0",
		MaxRetries: -1,
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis disabled in tests")
		},
	})
}
