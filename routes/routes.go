package routes

import (
	"catalog-service/common/middleware"
	"catalog-service/controllers"

	"github.com/gin-gonic/gin"
)

// Handlers groups the controllers mounted under /api/products.
type Handlers struct {
	Products *controllers.ProductController
	Bulk     *controllers.BulkImportHandler
	Images   *controllers.PresignedURLHandler
}

// Options controls access to write routes.
type Options struct {
	AuthEnabled     bool
	JWTSecret       []byte
	UploadPerMinute int
	UploadBurst     int
}

// RegisterRoutes mounts the product API. Reads are public; writes require an
// admin when auth is enabled.
func RegisterRoutes(r *gin.Engine, h Handlers, opts Options) {
	products := r.Group("/api/products")

	products.GET("", h.Products.ListProducts)
	products.GET("/:id", h.Products.GetProduct)
	products.GET("/slug/:slug", h.Products.GetProductBySlug)

	admin := products.Group("")
	if opts.AuthEnabled {
		admin.Use(middleware.AuthMiddleware(opts.JWTSecret), middleware.AdminOnly())
	}

	admin.POST("", h.Products.CreateProduct)
	admin.PUT("/:id", h.Products.UpdateProduct)
	admin.PUT("/:id/deactivate", h.Products.DeactivateProduct)
	admin.DELETE("/:id", h.Products.DeleteProduct)
	admin.POST("/:id/images/presign", h.Images.PresignProductImage)

	perMinute, burst := opts.UploadPerMinute, opts.UploadBurst
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	admin.POST("/bulk-upload", middleware.RateLimitMiddleware(perMinute, burst), h.Bulk.CreateBulkProducts)
	admin.GET("/bulk-upload/jobs/:id", h.Bulk.GetBulkImportJobStatus)
}
