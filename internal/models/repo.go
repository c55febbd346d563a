package models

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Validate = validator.New()

const (
	UsersCol      = "users"
	ListingsCol   = "listings"
	FavouritesCol = "favourites"
)

type MongodbRepo struct {
	client *mongo.Client
	dbName string
}

func MongodbNewRepo(client *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		client: client,
		dbName: dbName,
	}
}

func (mdb *MongodbRepo) collection(name string) *mongo.Collection {
	return mdb.client.Database(mdb.dbName).Collection(name)
}

// EnsureIndexes creates the indexes the invariants depend on: case-insensitive
// uniqueness of email and username, the favourite pair constraint, and the
// lookup paths used by browsing and token redemption.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	caseInsensitive := options.Collation{Locale: "en", Strength: 2}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(&caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(&caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "email_verification_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := mdb.collection(UsersCol).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %v", err)
	}

	listingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner.id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := mdb.collection(ListingsCol).Indexes().CreateMany(ctx, listingIndexes); err != nil {
		return fmt.Errorf("failed to create listing indexes: %v", err)
	}

	favIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "listing_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "listing_id", Value: 1}}},
	}
	if _, err := mdb.collection(FavouritesCol).Indexes().CreateMany(ctx, favIndexes); err != nil {
		return fmt.Errorf("failed to create favourite indexes: %v", err)
	}

	return nil
}
