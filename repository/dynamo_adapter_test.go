package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"catalog-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	puts    []*dynamodb.PutItemInput
	putErr  error
	pages   map[string][]map[string]types.AttributeValue
	scans   int
	scanErr error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

// Scan returns one item per page so pagination is exercised.
func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans++
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	items := f.pages[aws.ToString(in.TableName)]
	idx := 0
	if in.ExclusiveStartKey != nil {
		var key struct {
			Next int `dynamodbav:"next"`
		}
		if err := attributevalue.UnmarshalMap(in.ExclusiveStartKey, &key); err != nil {
			return nil, err
		}
		idx = key.Next
	}
	out := &dynamodb.ScanOutput{}
	if idx < len(items) {
		out.Items = []map[string]types.AttributeValue{items[idx]}
	}
	if idx+1 < len(items) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"next": &types.AttributeValueMemberN{Value: fmt.Sprint(idx + 1)},
		}
	}
	return out, nil
}

func refItem(t *testing.T, id, name string) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(ddbReference{ID: id, Name: name})
	require.NoError(t, err)
	return item
}

func TestDynamoProductRepo_Create(t *testing.T) {
	client := &fakeDynamo{}
	repo := NewDynamoProductRepo(client, "products")

	brandID := "b-1"
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &models.Product{
		ID:               "p-1",
		Name:             "Ami Eyes Kajal",
		Price:            100,
		CategoryID:       "c-1",
		BrandID:          &brandID,
		BrandName:        "Ami Eyes",
		Stock:            models.StockFlags{InStock: true, IsNew: true},
		DiscountTier1Pct: 10,
		Images:           []string{"https://cdn/x.jpg"},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	require.Len(t, client.puts, 1)

	in := client.puts[0]
	assert.Equal(t, "products", aws.ToString(in.TableName))
	assert.Equal(t, "attribute_not_exists(product_id)", aws.ToString(in.ConditionExpression))

	var stored ddbProduct
	require.NoError(t, attributevalue.UnmarshalMap(in.Item, &stored))
	assert.Equal(t, "p-1", stored.ProductID)
	assert.Equal(t, "b-1", aws.ToString(stored.BrandID))
	assert.True(t, stored.InStock)
	assert.True(t, stored.IsNew)
	assert.False(t, stored.IsFeatured)
	assert.Equal(t, 10.0, stored.Discount5To9)
	assert.Equal(t, "2026-01-02T03:04:05Z", stored.CreatedAt)
	assert.Nil(t, stored.Description)
}

func TestDynamoProductRepo_CreateDuplicate(t *testing.T) {
	client := &fakeDynamo{putErr: &types.ConditionalCheckFailedException{Message: aws.String("exists")}}
	repo := NewDynamoProductRepo(client, "products")

	err := repo.Create(context.Background(), &models.Product{ID: "p-1"})
	assert.ErrorIs(t, err, ErrDuplicateProduct)
}

func TestDynamoProductRepo_CreateError(t *testing.T) {
	client := &fakeDynamo{putErr: errors.New("throttled")}
	repo := NewDynamoProductRepo(client, "products")

	err := repo.Create(context.Background(), &models.Product{ID: "p-1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateProduct)
	assert.Contains(t, err.Error(), "throttled")
}

func TestDynamoReferenceRepos_Paginate(t *testing.T) {
	client := &fakeDynamo{pages: map[string][]map[string]types.AttributeValue{
		"categories": {refItem(t, "c-1", "Eyes"), refItem(t, "c-2", "Lips"), refItem(t, "c-3", "Face")},
		"brands":     {refItem(t, "b-1", "Ami Eyes")},
	}}
	stores := NewDynamoStores(client, DynamoTables{Products: "products", Categories: "categories", Brands: "brands"})

	cats, err := stores.Categories.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Category{{ID: "c-1", Name: "Eyes"}, {ID: "c-2", Name: "Lips"}, {ID: "c-3", Name: "Face"}}, cats)
	assert.Equal(t, 3, client.scans)

	brands, err := stores.Brands.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Brand{{ID: "b-1", Name: "Ami Eyes"}}, brands)
}

func TestDynamoReferenceRepos_ScanError(t *testing.T) {
	client := &fakeDynamo{scanErr: errors.New("access denied")}
	_, err := NewDynamoCategoryRepo(client, "categories").FindAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan categories failed")
}

func TestValidateDriver(t *testing.T) {
	for _, d := range []string{DriverDynamo, DriverPostgres, DriverMongo} {
		assert.NoError(t, ValidateDriver(d))
	}
	assert.Error(t, ValidateDriver("sqlite"))
}
