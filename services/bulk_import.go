package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"catalog-service/models"
	"catalog-service/uploads"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductInserter is the slice of the product repository the importer needs.
type ProductInserter interface {
	InsertMany(ctx context.Context, products []models.Product) (int, error)
	FindExistingSlugs(ctx context.Context, slugs []string) ([]string, error)
}

// BulkImporter turns CSV product rows into stored products. Invalid rows
// are reported individually; valid rows are written in a single bulk call.
type BulkImporter struct {
	store ProductInserter
	now   func() time.Time
}

func NewBulkImporter(store ProductInserter) *BulkImporter {
	return &BulkImporter{store: store, now: time.Now}
}

// Import reads the whole CSV source, validates every data row and inserts
// the accepted ones. A malformed source yields a *ParseError and a failed
// insert yields a *StorageError; neither returns a partial result.
func (b *BulkImporter) Import(ctx context.Context, r io.Reader) (*models.BulkImportResult, error) {
	stream, err := newRowStream(r)
	if err != nil {
		importRuns.WithLabelValues("parse_error").Inc()
		return nil, err
	}

	now := b.now().UTC()
	accepted := make([]models.Product, 0)
	rejected := make([]models.RowError, 0)

	for rowNum := 1; ; rowNum++ {
		row, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			importRuns.WithLabelValues("parse_error").Inc()
			return nil, err
		}

		product := models.Product{
			ID:        uuid.New(),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if reason := applyRowRules(row, &product); reason != "" {
			rejected = append(rejected, models.RowError{Row: rowNum, Error: reason})
			continue
		}
		accepted = append(accepted, product)
	}

	if err := b.assignSlugs(ctx, accepted); err != nil {
		importRuns.WithLabelValues("storage_error").Inc()
		return nil, &StorageError{Op: "resolve slugs", Err: err}
	}

	inserted, err := b.store.InsertMany(ctx, accepted)
	if err != nil {
		importRuns.WithLabelValues("storage_error").Inc()
		zap.L().Error("bulk insert failed", zap.Int("accepted", len(accepted)), zap.Error(err))
		return nil, &StorageError{Op: "bulk insert", Err: err}
	}

	importRuns.WithLabelValues("ok").Inc()
	importRows.WithLabelValues("accepted").Add(float64(inserted))
	importRows.WithLabelValues("rejected").Add(float64(len(rejected)))

	message := "Bulk upload completed"
	if len(accepted) == 0 {
		message = "No valid products to import"
	}
	return &models.BulkImportResult{
		Message:       message,
		InsertedCount: inserted,
		ErrorCount:    len(rejected),
		Errors:        rejected,
	}, nil
}

// ImportUpload imports a previously stored upload. The upload is removed
// from the store on every exit path.
func (b *BulkImporter) ImportUpload(ctx context.Context, store uploads.Store, key string) (*models.BulkImportResult, error) {
	defer func() {
		if err := store.Remove(context.WithoutCancel(ctx), key); err != nil {
			zap.L().Warn("failed to remove upload", zap.String("key", key), zap.Error(err))
		}
	}()

	f, err := store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", key, err)
	}
	defer f.Close()

	return b.Import(ctx, f)
}

// assignSlugs derives a slug per product, suffixing any that collide with
// stored products or with earlier rows of the same batch.
func (b *BulkImporter) assignSlugs(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	bases := make([]string, len(products))
	candidates := make([]string, 0, len(products))
	seen := make(map[string]bool, len(products))
	for i := range products {
		bases[i] = Slugify(products[i].Name)
		if !seen[bases[i]] {
			seen[bases[i]] = true
			candidates = append(candidates, bases[i])
		}
	}

	existing, err := b.store.FindExistingSlugs(ctx, candidates)
	if err != nil {
		return err
	}
	taken := make(map[string]bool, len(existing)+len(products))
	for _, s := range existing {
		taken[s] = true
	}

	for i := range products {
		slug := bases[i]
		if taken[slug] {
			slug = suffixedSlug(slug, products[i].ID.String())
		}
		taken[slug] = true
		products[i].Slug = slug
	}
	return nil
}
