package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/uploads"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductService struct {
	repo     repository.ProductRepo
	importer *BulkImporter
	uploads  uploads.Store

	images   ImagePresigner
	events   EventPublisher
	topicArn string
	metrics  MetricsRecorder

	now func() time.Time
}

func NewProductService(repo repository.ProductRepo, store uploads.Store) *ProductService {
	return &ProductService{
		repo:     repo,
		importer: NewBulkImporter(repo),
		uploads:  store,
		now:      time.Now,
	}
}

func (s *ProductService) WithImages(p ImagePresigner) *ProductService {
	s.images = p
	return s
}

func (s *ProductService) WithEvents(pub EventPublisher, topicArn string) *ProductService {
	s.events = pub
	s.topicArn = topicArn
	return s
}

func (s *ProductService) WithMetrics(m MetricsRecorder) *ProductService {
	s.metrics = m
	return s
}

func (s *ProductService) ListProducts(ctx context.Context, params ListProductsParams) ([]*models.Product, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	products, err := s.repo.Find(ctx, repository.ListFilter{
		Category: params.Category,
		IsActive: params.IsActive,
		Limit:    perPage,
		Skip:     (page - 1) * perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return p, nil
}

func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	name, err := requiredText("name", req.Name)
	if err != nil {
		return nil, err
	}
	description, err := requiredText("description", req.Description)
	if err != nil {
		return nil, err
	}
	category, err := requiredText("category", req.Category)
	if err != nil {
		return nil, err
	}
	if req.Price == nil {
		return nil, &ValidationError{Field: "price", Reason: "is required"}
	}
	if err := checkPrice(*req.Price); err != nil {
		return nil, err
	}
	stock := 0
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, &ValidationError{Field: "stock", Reason: "must not be negative"}
		}
		stock = *req.Stock
	}

	now := s.now().UTC()
	product := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       *req.Price,
		Images:      cleanList(req.Images),
		Tags:        cleanList(req.Tags),
		Category:    category,
		Stock:       stock,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	product.Slug, err = s.uniqueSlug(ctx, name, product.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve slug: %w", err)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, mapRepoError(err)
	}

	if err := s.recordCount(ctx, awspkg.MetricProductsCreated); err != nil {
		zap.L().Warn("failed to record product metric", zap.Error(err))
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req models.UpdateProductRequest) (*models.Product, error) {
	updates := make(map[string]interface{})

	if req.Name != nil {
		name, err := requiredText("name", *req.Name)
		if err != nil {
			return nil, err
		}
		slug, err := s.uniqueSlug(ctx, name, id)
		if err != nil {
			return nil, fmt.Errorf("resolve slug: %w", err)
		}
		updates["name"] = name
		updates["slug"] = slug
	}
	if req.Description != nil {
		description, err := requiredText("description", *req.Description)
		if err != nil {
			return nil, err
		}
		updates["description"] = description
	}
	if req.Category != nil {
		category, err := requiredText("category", *req.Category)
		if err != nil {
			return nil, err
		}
		updates["category"] = category
	}
	if req.Price != nil {
		if err := checkPrice(*req.Price); err != nil {
			return nil, err
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, &ValidationError{Field: "stock", Reason: "must not be negative"}
		}
		updates["stock"] = *req.Stock
	}
	if req.Images != nil {
		updates["images"] = cleanList(*req.Images)
	}
	if req.Tags != nil {
		updates["tags"] = cleanList(*req.Tags)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return nil, ErrNoUpdateFields
	}
	updates["updated_at"] = s.now().UTC()

	p, err := s.repo.FindByIDAndUpdate(ctx, id, updates)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return p, nil
}

// DeactivateProduct hides a product from active listings without deleting it.
func (s *ProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.FindByIDAndUpdate(ctx, id, map[string]interface{}{
		"is_active":  false,
		"updated_at": s.now().UTC(),
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByIDAndDelete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// ImportProducts runs the bulk import pipeline directly over r.
func (s *ProductService) ImportProducts(ctx context.Context, r io.Reader) (*models.BulkImportResult, error) {
	result, err := s.importer.Import(ctx, r)
	s.afterImport(ctx, result, err)
	return result, err
}

// SaveUpload stages an uploaded CSV in the upload store and returns its key.
func (s *ProductService) SaveUpload(ctx context.Context, r io.Reader) (string, error) {
	key, err := s.uploads.Save(ctx, r)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return key, nil
}

// DiscardUpload removes a staged upload that will not be imported.
func (s *ProductService) DiscardUpload(ctx context.Context, key string) error {
	return s.uploads.Remove(ctx, key)
}

// ImportUpload imports a staged upload and removes it afterwards.
func (s *ProductService) ImportUpload(ctx context.Context, key string) (*models.BulkImportResult, error) {
	result, err := s.importer.ImportUpload(ctx, s.uploads, key)
	s.afterImport(ctx, result, err)
	return result, err
}

// PresignImageUpload returns a presigned upload for a new image of an existing product.
func (s *ProductService) PresignImageUpload(ctx context.Context, id uuid.UUID, filename, contentType string, expires time.Duration) (*awspkg.PresignedUpload, error) {
	if s.images == nil {
		return nil, ErrImagesDisabled
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	return s.images.PresignProductImage(ctx, id, filename, contentType, expires)
}

func (s *ProductService) afterImport(ctx context.Context, result *models.BulkImportResult, importErr error) {
	if importErr != nil {
		if err := s.recordCount(ctx, awspkg.MetricImportFailures); err != nil {
			zap.L().Warn("failed to record import metric", zap.Error(err))
		}
		return
	}

	if s.metrics != nil {
		if err := s.metrics.RecordValue(ctx, awspkg.MetricProductsImported, float64(result.InsertedCount), nil); err != nil {
			zap.L().Warn("failed to record import metric", zap.Error(err))
		}
		if err := s.metrics.RecordValue(ctx, awspkg.MetricImportRowErrors, float64(result.ErrorCount), nil); err != nil {
			zap.L().Warn("failed to record import metric", zap.Error(err))
		}
	}

	if s.events == nil || s.topicArn == "" || result.InsertedCount == 0 {
		return
	}
	payload, err := json.Marshal(ProductsImportedEvent{
		Event:         EventProductsImported,
		InsertedCount: result.InsertedCount,
		ErrorCount:    result.ErrorCount,
		ImportedAt:    s.now().UTC(),
	})
	if err != nil {
		zap.L().Error("failed to marshal import event", zap.Error(err))
		return
	}
	if err := s.events.Publish(ctx, s.topicArn, EventProductsImported, payload); err != nil {
		zap.L().Warn("failed to publish import event", zap.Error(err))
	}
}

func (s *ProductService) recordCount(ctx context.Context, name string) error {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.RecordCount(ctx, name, nil)
}

// uniqueSlug derives a slug for name, suffixing it when another product already owns it.
func (s *ProductService) uniqueSlug(ctx context.Context, name string, id uuid.UUID) (string, error) {
	base := Slugify(name)
	owner, err := s.repo.FindBySlug(ctx, base)
	if errors.Is(err, repository.ErrNotFound) {
		return base, nil
	}
	if err != nil {
		return "", err
	}
	if owner.ID == id {
		return base, nil
	}
	return suffixedSlug(base, id.String()), nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrDuplicateProduct
	default:
		return err
	}
}

func requiredText(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return v, nil
}

func checkPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return &ValidationError{Field: "price", Reason: "must be a finite number >= 0"}
	}
	return nil
}

// cleanList trims each element and drops empty ones.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
