package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-service/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix     = "product:detail:"
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"
)

// CacheManager caches product reads in Redis. List entries are keyed by a
// version counter, so bumping the counter invalidates every list at once.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(rdb *redis.Client, ttl time.Duration) *CacheManager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheManager{redis: rdb, ttl: ttl}
}

// ListKey identifies one cached listing.
type ListKey struct {
	Page     int
	PerPage  int
	Category string
	Active   string
}

func (cm *CacheManager) GetProductList(ctx context.Context, key ListKey) ([]*models.Product, bool) {
	version, err := cm.getCacheVersion(ctx)
	if err != nil {
		return nil, false
	}

	cached, err := cm.redis.Get(ctx, cm.listCacheKey(version, key)).Bytes()
	if err != nil {
		return nil, false
	}

	var products []*models.Product
	if err := json.Unmarshal(cached, &products); err != nil {
		zap.L().Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return products, true
}

// SetProductListAsync caches a product list asynchronously
func (cm *CacheManager) SetProductListAsync(key ListKey, products []*models.Product) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(bgCtx)
		if err != nil {
			return
		}
		payload, err := json.Marshal(products)
		if err != nil {
			zap.L().Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(bgCtx, cm.listCacheKey(version, key), payload, cm.ttl).Err(); err != nil {
			zap.L().Debug("Failed to cache product list", zap.Error(err))
		}
	}()
}

func (cm *CacheManager) GetProduct(ctx context.Context, productID string) (*models.Product, bool) {
	cached, err := cm.redis.Get(ctx, ProductCachePrefix+productID).Bytes()
	if err != nil {
		return nil, false
	}
	var product models.Product
	if err := json.Unmarshal(cached, &product); err != nil {
		zap.L().Warn("Failed to unmarshal cached product", zap.Error(err), zap.String("product_id", productID))
		return nil, false
	}
	return &product, true
}

// SetProductAsync caches a single product asynchronously
func (cm *CacheManager) SetProductAsync(productID string, product *models.Product) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := json.Marshal(product)
		if err != nil {
			zap.L().Warn("Failed to marshal product for cache", zap.Error(err), zap.String("product_id", productID))
			return
		}
		if err := cm.redis.Set(bgCtx, ProductCachePrefix+productID, payload, cm.ttl).Err(); err != nil {
			zap.L().Debug("Failed to cache product", zap.Error(err), zap.String("product_id", productID))
		}
	}()
}

// Invalidate drops every cached listing by bumping the version.
func (cm *CacheManager) Invalidate(ctx context.Context) error {
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	zap.L().Debug("Cache invalidated", zap.Int64("new_version", newVersion))
	return nil
}

// InvalidateProduct drops the listings and the cached copy of one product.
func (cm *CacheManager) InvalidateProduct(ctx context.Context, productID string) {
	if err := cm.Invalidate(ctx); err != nil {
		zap.L().Error("Failed to invalidate cache", zap.Error(err), zap.String("product_id", productID))
	}
	if err := cm.redis.Del(ctx, ProductCachePrefix+productID).Err(); err != nil {
		zap.L().Warn("Failed to delete product cache", zap.Error(err), zap.String("product_id", productID))
	}
}

func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if errors.Is(err, redis.Nil) {
		// SetNX so a concurrent Incr is never overwritten
		if err := cm.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return cm.redis.Get(ctx, CacheVersionKey).Int64()
	}
	if err == nil {
		err = fmt.Errorf("invalid cache version %d", ver)
	}
	return 0, err
}

func (cm *CacheManager) listCacheKey(version int64, key ListKey) string {
	return fmt.Sprintf("%s%d:p:%d:l:%d:c:%s:a:%s",
		ProductListCachePrefix, version, key.Page, key.PerPage, key.Category, key.Active)
}
