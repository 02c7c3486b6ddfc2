package repository

import (
	"context"
	"fmt"

	"catalog-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type ddbReference struct {
	ID   string `dynamodbav:"id"`
	Name string `dynamodbav:"name"`
}

// scanReferences reads every id/name pair of table, page by page.
func scanReferences(ctx context.Context, client dynamodb.ScanAPIClient, table string) ([]ddbReference, error) {
	paginator := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{
		TableName:            aws.String(table),
		ProjectionExpression: aws.String("id, #n"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
	})

	var refs []ddbReference
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s failed: %w", table, err)
		}
		var batch []ddbReference
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal %s items: %w", table, err)
		}
		refs = append(refs, batch...)
	}
	return refs, nil
}

// DynamoCategoryRepo lists categories from a table keyed by `id`.
type DynamoCategoryRepo struct {
	client dynamodb.ScanAPIClient
	table  string
}

func NewDynamoCategoryRepo(client dynamodb.ScanAPIClient, table string) *DynamoCategoryRepo {
	return &DynamoCategoryRepo{client: client, table: table}
}

func (d *DynamoCategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	refs, err := scanReferences(ctx, d.client, d.table)
	if err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(refs))
	for _, r := range refs {
		categories = append(categories, models.Category{ID: r.ID, Name: r.Name})
	}
	return categories, nil
}

// DynamoBrandRepo lists brands from a table keyed by `id`.
type DynamoBrandRepo struct {
	client dynamodb.ScanAPIClient
	table  string
}

func NewDynamoBrandRepo(client dynamodb.ScanAPIClient, table string) *DynamoBrandRepo {
	return &DynamoBrandRepo{client: client, table: table}
}

func (d *DynamoBrandRepo) FindAll(ctx context.Context) ([]models.Brand, error) {
	refs, err := scanReferences(ctx, d.client, d.table)
	if err != nil {
		return nil, err
	}
	brands := make([]models.Brand, 0, len(refs))
	for _, r := range refs {
		brands = append(brands, models.Brand{ID: r.ID, Name: r.Name})
	}
	return brands, nil
}
