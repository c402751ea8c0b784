package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ProductController handles product CRUD requests
type ProductController struct {
	service   ProductServiceAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

func NewProductController(ps ProductServiceAPI, rdb *redis.Client, cfg Config) *ProductController {
	timeout := cfg.ContextTimeout
	if timeout <= 0 {
		timeout = DefaultContextTimeout
	}
	return &ProductController{
		service:   ps,
		cache:     NewCacheManager(rdb, cfg.CacheTTL),
		validator: NewRequestValidator(),
		timeout:   timeout,
	}
}

// Cache exposes the controller's cache so other handlers can invalidate it.
func (pc *ProductController) Cache() *CacheManager {
	return pc.cache
}

// ListProducts returns products newest first.
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, perPage, err := pc.validator.ParsePagination(c)
	if err != nil {
		badRequest(c, err.Error(), nil)
		return
	}
	filters, err := pc.validator.ParseFilters(c)
	if err != nil {
		badRequest(c, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	key := ListKey{Page: page, PerPage: perPage, Category: filters.Category, Active: formatBool(filters.Active)}
	if products, ok := pc.cache.GetProductList(ctx, key); ok {
		c.JSON(http.StatusOK, products)
		return
	}

	products, err := pc.service.ListProducts(ctx, services.ListProductsParams{
		Page:     page,
		PerPage:  perPage,
		Category: filters.Category,
		IsActive: filters.Active,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	pc.cache.SetProductListAsync(key, products)
	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	id, err := pc.validator.ParseID(c)
	if err != nil {
		badRequest(c, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	if product, ok := pc.cache.GetProduct(ctx, id.String()); ok {
		c.JSON(http.StatusOK, product)
		return
	}

	product, err := pc.service.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	pc.cache.SetProductAsync(id.String(), product)
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		badRequest(c, "slug is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	product, err := pc.service.GetProductBySlug(ctx, slug)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	req, err := pc.validator.ParseCreateProductRequest(c)
	if err != nil {
		badRequest(c, "Invalid product", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	product, err := pc.service.CreateProduct(ctx, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := pc.cache.Invalidate(ctx); err != nil {
		zap.L().Warn("Failed to invalidate cache after create", zap.Error(err))
	}
	zap.L().Info("Product created", zap.String("product_id", product.ID.String()), zap.String("slug", product.Slug))
	c.JSON(http.StatusCreated, product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := pc.validator.ParseID(c)
	if err != nil {
		badRequest(c, err.Error(), nil)
		return
	}
	req, err := pc.validator.ParseUpdateProductRequest(c)
	if err != nil {
		badRequest(c, "Invalid product update", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	product, err := pc.service.UpdateProduct(ctx, id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	pc.cache.InvalidateProduct(ctx, id.String())
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) DeactivateProduct(c *gin.Context) {
	id, err := pc.validator.ParseID(c)
	if err != nil {
		badRequest(c, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	product, err := pc.service.DeactivateProduct(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	pc.cache.InvalidateProduct(ctx, id.String())
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := pc.validator.ParseID(c)
	if err != nil {
		badRequest(c, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	if err := pc.service.DeleteProduct(ctx, id); err != nil {
		handleServiceError(c, err)
		return
	}

	pc.cache.InvalidateProduct(ctx, id.String())
	zap.L().Info("Product deleted", zap.String("product_id", id.String()))
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
