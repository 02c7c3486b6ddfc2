package models

import "time"

// StockFlags are the storefront visibility switches set on every imported product.
type StockFlags struct {
	InStock    bool `json:"in_stock" bson:"in_stock" gorm:"column:in_stock"`
	IsFeatured bool `json:"is_featured" bson:"is_featured" gorm:"column:is_featured"`
	IsNew      bool `json:"is_new" bson:"is_new" gorm:"column:is_new"`
}

// Product is the fully resolved record written to the record store by an import run.
type Product struct {
	ID               string     `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name             string     `json:"name" bson:"name" gorm:"not null"`
	Price            float64    `json:"price" bson:"price"`
	FormattedPrice   string     `json:"formatted_price" bson:"formatted_price"`
	CategoryID       string     `json:"category_id" bson:"category_id" gorm:"index"`
	CategoryName     string     `json:"category_name" bson:"category_name"`
	BrandID          *string    `json:"brand_id" bson:"brand_id,omitempty"`
	BrandName        string     `json:"brand_name" bson:"brand_name"`
	Description      string     `json:"description" bson:"description"`
	ShortDescription string     `json:"short_description" bson:"short_description"`
	Slug             string     `json:"slug" bson:"slug" gorm:"index"`
	Stock            StockFlags `json:"stock" bson:"stock" gorm:"embedded"`
	DiscountTier1Pct float64    `json:"discount_5_to_9" bson:"discount_5_to_9" gorm:"column:discount_5_to_9"`
	DiscountTier2Pct float64    `json:"discount_10_plus" bson:"discount_10_plus" gorm:"column:discount_10_plus"`
	ImageURL         string     `json:"image_url" bson:"image_url"`
	Images           []string   `json:"images" bson:"images" gorm:"serializer:json"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updated_at"`
}
