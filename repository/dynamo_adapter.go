package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrDuplicateProduct is returned when a product id already exists.
var ErrDuplicateProduct = errors.New("product already exists")

// DynamoAPI is the subset of the DynamoDB client used by the adapters.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoProductRepo stores products in a table keyed by `product_id`.
type DynamoProductRepo struct {
	client DynamoAPI
	table  string
}

func NewDynamoProductRepo(client DynamoAPI, table string) *DynamoProductRepo {
	return &DynamoProductRepo{client: client, table: table}
}

type ddbProduct struct {
	ProductID        string   `dynamodbav:"product_id"`
	Name             string   `dynamodbav:"name"`
	Price            float64  `dynamodbav:"price"`
	FormattedPrice   string   `dynamodbav:"formatted_price"`
	CategoryID       string   `dynamodbav:"category_id"`
	CategoryName     string   `dynamodbav:"category_name"`
	BrandID          *string  `dynamodbav:"brand_id,omitempty"`
	BrandName        string   `dynamodbav:"brand_name,omitempty"`
	Description      *string  `dynamodbav:"description,omitempty"`
	ShortDescription *string  `dynamodbav:"short_description,omitempty"`
	Slug             string   `dynamodbav:"slug"`
	InStock          bool     `dynamodbav:"in_stock"`
	IsFeatured       bool     `dynamodbav:"is_featured"`
	IsNew            bool     `dynamodbav:"is_new"`
	Discount5To9     float64  `dynamodbav:"discount_5_to_9"`
	Discount10Plus   float64  `dynamodbav:"discount_10_plus"`
	ImageURL         string   `dynamodbav:"image_url,omitempty"`
	Images           []string `dynamodbav:"images,omitempty"`
	CreatedAt        string   `dynamodbav:"created_at"`
	UpdatedAt        string   `dynamodbav:"updated_at"`
}

func toDDBProduct(p *models.Product) ddbProduct {
	dp := ddbProduct{
		ProductID:      p.ID,
		Name:           p.Name,
		Price:          p.Price,
		FormattedPrice: p.FormattedPrice,
		CategoryID:     p.CategoryID,
		CategoryName:   p.CategoryName,
		BrandID:        p.BrandID,
		BrandName:      p.BrandName,
		Slug:           p.Slug,
		InStock:        p.Stock.InStock,
		IsFeatured:     p.Stock.IsFeatured,
		IsNew:          p.Stock.IsNew,
		Discount5To9:   p.DiscountTier1Pct,
		Discount10Plus: p.DiscountTier2Pct,
		ImageURL:       p.ImageURL,
		Images:         p.Images,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Description != "" {
		dp.Description = &p.Description
	}
	if p.ShortDescription != "" {
		dp.ShortDescription = &p.ShortDescription
	}
	return dp
}

// Create writes one product. The condition keeps an id collision from
// silently replacing an existing item.
func (d *DynamoProductRepo) Create(ctx context.Context, product *models.Product) error {
	item, err := attributevalue.MarshalMap(toDDBProduct(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(product_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", ErrDuplicateProduct, product.ID)
		}
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}
