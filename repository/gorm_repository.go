package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog-service/models"

	"gorm.io/gorm"
)

// GormProductRepo stores products in Postgres through GORM.
type GormProductRepo struct {
	db *gorm.DB
}

func NewGormProductRepo(db *gorm.DB) *GormProductRepo {
	return &GormProductRepo{db: db}
}

func (r *GormProductRepo) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrDuplicateProduct, product.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

type GormCategoryRepo struct {
	db *gorm.DB
}

func NewGormCategoryRepo(db *gorm.DB) *GormCategoryRepo {
	return &GormCategoryRepo{db: db}
}

func (r *GormCategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

type GormBrandRepo struct {
	db *gorm.DB
}

func NewGormBrandRepo(db *gorm.DB) *GormBrandRepo {
	return &GormBrandRepo{db: db}
}

func (r *GormBrandRepo) FindAll(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.WithContext(ctx).Order("name").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}
