package repository

import (
	"context"
	"fmt"

	"catalog-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepo stores products in the "products" collection.
type MongoProductRepo struct {
	collection *mongo.Collection
}

func NewMongoProductRepo(db *mongo.Database) *MongoProductRepo {
	return &MongoProductRepo{collection: db.Collection("products")}
}

func (r *MongoProductRepo) Create(ctx context.Context, product *models.Product) error {
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateProduct, product.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// mongoReference accepts both ObjectID and string `_id` values, since older
// collections were seeded with ObjectIDs.
type mongoReference struct {
	ID   interface{} `bson:"_id"`
	Name string      `bson:"name"`
}

func (m mongoReference) id() string {
	switch v := m.ID.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func findReferences(ctx context.Context, collection *mongo.Collection) ([]mongoReference, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "name": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection.Name(), err)
	}
	defer cursor.Close(ctx)

	var refs []mongoReference
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection.Name(), err)
	}
	return refs, nil
}

type MongoCategoryRepo struct {
	collection *mongo.Collection
}

func NewMongoCategoryRepo(db *mongo.Database) *MongoCategoryRepo {
	return &MongoCategoryRepo{collection: db.Collection("categories")}
}

func (r *MongoCategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	refs, err := findReferences(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(refs))
	for _, ref := range refs {
		categories = append(categories, models.Category{ID: ref.id(), Name: ref.Name})
	}
	return categories, nil
}

type MongoBrandRepo struct {
	collection *mongo.Collection
}

func NewMongoBrandRepo(db *mongo.Database) *MongoBrandRepo {
	return &MongoBrandRepo{collection: db.Collection("brands")}
}

func (r *MongoBrandRepo) FindAll(ctx context.Context) ([]models.Brand, error) {
	refs, err := findReferences(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	brands := make([]models.Brand, 0, len(refs))
	for _, ref := range refs {
		brands = append(brands, models.Brand{ID: ref.id(), Name: ref.Name})
	}
	return brands, nil
}
