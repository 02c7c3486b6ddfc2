package repository

import (
	"context"

	"catalog-service/models"
)

// ProductRepo is the record store used by the import pipeline. Each Create is
// an independent insert; there is no multi-row batching and no upsert.
type ProductRepo interface {
	Create(ctx context.Context, product *models.Product) error
}

// CategoryRepo lists the reference categories.
type CategoryRepo interface {
	FindAll(ctx context.Context) ([]models.Category, error)
}

// BrandRepo lists the known brands.
type BrandRepo interface {
	FindAll(ctx context.Context) ([]models.Brand, error)
}
