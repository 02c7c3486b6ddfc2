package services

import (
	"context"
	"fmt"
	"strings"

	"catalog-service/models"
	"catalog-service/repository"

	"golang.org/x/sync/errgroup"
)

// ReferenceCache holds the categories and brands of one import run. It is
// loaded once and read-only afterwards, so workers share it without locking.
type ReferenceCache struct {
	categories map[string]models.Category
	brands     map[string]models.Brand
}

// LoadReferenceCache fetches both reference sets concurrently.
func LoadReferenceCache(ctx context.Context, categories repository.CategoryRepo, brands repository.BrandRepo) (*ReferenceCache, error) {
	var cats []models.Category
	var brs []models.Brand

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if cats, err = categories.FindAll(gctx); err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if brs, err = brands.FindAll(gctx); err != nil {
			return fmt.Errorf("load brands: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewReferenceCache(cats, brs), nil
}

// NewReferenceCache indexes reference data by case-folded name. When two
// entries share a name the first one is kept.
func NewReferenceCache(categories []models.Category, brands []models.Brand) *ReferenceCache {
	c := &ReferenceCache{
		categories: make(map[string]models.Category, len(categories)),
		brands:     make(map[string]models.Brand, len(brands)),
	}
	for _, cat := range categories {
		key := refKey(cat.Name)
		if _, ok := c.categories[key]; !ok {
			c.categories[key] = cat
		}
	}
	for _, b := range brands {
		key := refKey(b.Name)
		if _, ok := c.brands[key]; !ok {
			c.brands[key] = b
		}
	}
	return c
}

func (c *ReferenceCache) Category(name string) (models.Category, bool) {
	cat, ok := c.categories[refKey(name)]
	return cat, ok
}

func (c *ReferenceCache) Brand(name string) (models.Brand, bool) {
	b, ok := c.brands[refKey(name)]
	return b, ok
}

func (c *ReferenceCache) CategoryCount() int { return len(c.categories) }

func (c *ReferenceCache) BrandCount() int { return len(c.brands) }

func refKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
