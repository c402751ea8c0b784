package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Slug        string    `json:"slug" bson:"slug"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Images      []string  `json:"images" bson:"images"`
	Tags        []string  `json:"tags" bson:"tags"`
	Category    string    `json:"category" bson:"category"`
	Stock       int       `json:"stock" bson:"stock"`
	IsActive    bool      `json:"isActive" bson:"is_active"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// CreateProductRequest is the JSON body accepted by POST /api/products.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Images      []string `json:"images" validate:"omitempty,dive,required"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required"`
	Category    string   `json:"category" validate:"required"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
}

// UpdateProductRequest is the JSON body accepted by PUT /api/products/:id.
// Nil fields are left untouched.
type UpdateProductRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1"`
	Description *string   `json:"description" validate:"omitempty,min=1"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Images      *[]string `json:"images"`
	Tags        *[]string `json:"tags"`
	Category    *string   `json:"category" validate:"omitempty,min=1"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool     `json:"isActive"`
}
