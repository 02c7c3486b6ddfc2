package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverDynamo   = "dynamodb"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Stores groups the repositories an import run needs.
type Stores struct {
	Products   ProductRepo
	Categories CategoryRepo
	Brands     BrandRepo
}

// DynamoTables names the tables used by the DynamoDB driver.
type DynamoTables struct {
	Products   string
	Categories string
	Brands     string
}

func NewDynamoStores(client DynamoAPI, tables DynamoTables) Stores {
	return Stores{
		Products:   NewDynamoProductRepo(client, tables.Products),
		Categories: NewDynamoCategoryRepo(client, tables.Categories),
		Brands:     NewDynamoBrandRepo(client, tables.Brands),
	}
}

func NewGormStores(db *gorm.DB) Stores {
	return Stores{
		Products:   NewGormProductRepo(db),
		Categories: NewGormCategoryRepo(db),
		Brands:     NewGormBrandRepo(db),
	}
}

func NewMongoStores(db *mongo.Database) Stores {
	return Stores{
		Products:   NewMongoProductRepo(db),
		Categories: NewMongoCategoryRepo(db),
		Brands:     NewMongoBrandRepo(db),
	}
}

// ValidateDriver rejects unknown STORE_DRIVER values.
func ValidateDriver(driver string) error {
	switch driver {
	case DriverDynamo, DriverPostgres, DriverMongo:
		return nil
	default:
		return fmt.Errorf("unknown store driver %q (want %s, %s or %s)", driver, DriverDynamo, DriverPostgres, DriverMongo)
	}
}
