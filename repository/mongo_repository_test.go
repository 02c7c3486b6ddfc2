package repository

import (
	"context"
	"testing"

	"catalog-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepos(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create product", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoProductRepo(mt.DB)

		err := repo.Create(context.Background(), &models.Product{ID: "p-1", Name: "Sugar Lipstick"})
		assert.NoError(mt, err)
	})

	mt.Run("duplicate product", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := NewMongoProductRepo(mt.DB)

		err := repo.Create(context.Background(), &models.Product{ID: "p-1"})
		assert.ErrorIs(mt, err, ErrDuplicateProduct)
	})

	mt.Run("categories with mixed ids", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: oid}, {Key: "name", Value: "Eyes"}},
			bson.D{{Key: "_id", Value: "c-2"}, {Key: "name", Value: "Lips"}},
		))
		repo := NewMongoCategoryRepo(mt.DB)

		cats, err := repo.FindAll(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []models.Category{{ID: oid.Hex(), Name: "Eyes"}, {ID: "c-2", Name: "Lips"}}, cats)
	})

	mt.Run("brands find error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "unauthorized",
		}))
		repo := NewMongoBrandRepo(mt.DB)

		_, err := repo.FindAll(context.Background())
		require.Error(mt, err)
		var cmdErr mongo.CommandError
		assert.ErrorAs(mt, err, &cmdErr)
	})
}
