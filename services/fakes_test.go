package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"catalog-service/models"
	"catalog-service/repository"
	"catalog-service/uploads"

	"github.com/google/uuid"
)

// memRepo is an in-memory repository.ProductRepo.
type memRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product

	insertCalls int
	inserted    [][]models.Product
	insertErr   error
	slugErr     error
	createErr   error
}

func newMemRepo() *memRepo {
	return &memRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (r *memRepo) put(p models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := p
	r.products[p.ID] = &cp
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) Find(_ context.Context, filter repository.ListFilter) ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Skip >= len(out) {
		return []*models.Product{}, nil
	}
	out = out[filter.Skip:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memRepo) Create(_ context.Context, product *models.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(*product)
	return nil
}

func (r *memRepo) InsertMany(_ context.Context, products []models.Product) (int, error) {
	r.insertCalls++
	r.inserted = append(r.inserted, products)
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	for _, p := range products {
		r.put(p)
	}
	return len(products), nil
}

func (r *memRepo) FindByIDAndUpdate(_ context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "name":
			p.Name = v.(string)
		case "slug":
			p.Slug = v.(string)
		case "description":
			p.Description = v.(string)
		case "category":
			p.Category = v.(string)
		case "price":
			p.Price = v.(float64)
		case "stock":
			p.Stock = v.(int)
		case "images":
			p.Images = v.([]string)
		case "tags":
			p.Tags = v.([]string)
		case "is_active":
			p.IsActive = v.(bool)
		}
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) FindByIDAndDelete(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.products, id)
	return p, nil
}

func (r *memRepo) FindExistingSlugs(_ context.Context, slugs []string) ([]string, error) {
	if r.slugErr != nil {
		return nil, r.slugErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		want[s] = true
	}
	var out []string
	for _, p := range r.products {
		if want[p.Slug] {
			out = append(out, p.Slug)
		}
	}
	return out, nil
}

func (r *memRepo) EnsureIndexes(context.Context) error { return nil }

// memUploads is an in-memory uploads.Store that remembers removals.
type memUploads struct {
	files   map[string][]byte
	removed []string
	openErr error
}

func newMemUploads() *memUploads {
	return &memUploads{files: make(map[string][]byte)}
}

func (m *memUploads) Save(_ context.Context, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := uuid.NewString() + ".csv"
	m.files[key] = b
	return key, nil
}

func (m *memUploads) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	b, ok := m.files[key]
	if !ok {
		return nil, uploads.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memUploads) Remove(_ context.Context, key string) error {
	m.removed = append(m.removed, key)
	delete(m.files, key)
	return nil
}

func (m *memUploads) stage(csv string) string {
	key, _ := m.Save(context.Background(), strings.NewReader(csv))
	return key
}

var errStorageDown = errors.New("storage unavailable")
