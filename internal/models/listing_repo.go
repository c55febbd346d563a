package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListingRepo interface {
	CreateListing(ctx context.Context, listing *Listing) (*Listing, error)
	GetListingByID(ctx context.Context, id primitive.ObjectID) (*Listing, error)
	ListListings(ctx context.Context, query ListingQuery, offset, limit int) ([]*Listing, int, error)
	ListListingsByOwner(ctx context.Context, ownerID primitive.ObjectID, offset, limit int) ([]*Listing, int, error)
	UpdateListing(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*Listing, error)
	DeleteListing(ctx context.Context, id primitive.ObjectID) error
	ExpandOwner(ctx context.Context, listing *Listing) error
}

func (mdb *MongodbRepo) CreateListing(ctx context.Context, listing *Listing) (*Listing, error) {
	res, err := mdb.collection(ListingsCol).InsertOne(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %v", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		listing.ID = oid
	}
	return listing, nil
}

func (mdb *MongodbRepo) GetListingByID(ctx context.Context, id primitive.ObjectID) (*Listing, error) {
	var listing Listing
	err := mdb.collection(ListingsCol).FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("listing %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %v", err)
	}
	return &listing, nil
}

// ExpandOwner upgrades the listing's owner reference to the expanded form.
// Listings can outlive profile reads mid-request only when the owner was just
// deleted; that surfaces as NotFound rather than a half-populated record.
func (mdb *MongodbRepo) ExpandOwner(ctx context.Context, listing *Listing) error {
	var profile PublicProfile
	err := mdb.collection(UsersCol).FindOne(ctx, bson.M{"_id": listing.Owner.ID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("owner %s: %w", listing.Owner.ID.Hex(), ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to expand owner: %v", err)
	}
	listing.Owner.Profile = &profile
	return nil
}

func buildListingFilter(query ListingQuery) bson.M {
	filter := bson.M{}
	if query.Search != "" {
		// Query params are matched literally; unescaped input would let a
		// stray metacharacter break the query or force pathological scans.
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": pattern},
			{"description": pattern},
		}
	}
	if query.Category != "" {
		filter["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(query.Category) + "$", Options: "i"}
	}
	if query.Condition != "" {
		filter["condition"] = query.Condition
	}
	price := bson.M{}
	if query.MinPrice > 0 {
		price["$gte"] = query.MinPrice
	}
	if query.MaxPrice > 0 {
		price["$lte"] = query.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter
}

func sortForQuery(sort string) bson.D {
	switch sort {
	case "price_asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (mdb *MongodbRepo) ListListings(ctx context.Context, query ListingQuery, offset, limit int) ([]*Listing, int, error) {
	filter := buildListingFilter(query)
	return mdb.findListings(ctx, filter, sortForQuery(query.Sort), offset, limit)
}

func (mdb *MongodbRepo) ListListingsByOwner(ctx context.Context, ownerID primitive.ObjectID, offset, limit int) ([]*Listing, int, error) {
	filter := bson.M{"owner.id": ownerID}
	return mdb.findListings(ctx, filter, bson.D{{Key: "created_at", Value: -1}}, offset, limit)
}

func (mdb *MongodbRepo) findListings(ctx context.Context, filter bson.M, sort bson.D, offset, limit int) ([]*Listing, int, error) {
	col := mdb.collection(ListingsCol)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %v", err)
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find listings: %v", err)
	}
	defer cursor.Close(ctx)

	listings := []*Listing{}
	for cursor.Next(ctx) {
		var l Listing
		if err := cursor.Decode(&l); err != nil {
			return nil, 0, fmt.Errorf("failed to decode listing: %v", err)
		}
		listings = append(listings, &l)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}

	return listings, int(total), nil
}

func (mdb *MongodbRepo) UpdateListing(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*Listing, error) {
	set["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Listing
	err := mdb.collection(ListingsCol).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("listing %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %v", err)
	}
	return &updated, nil
}

// DeleteListing removes the listing and every favourite pointing at it.
func (mdb *MongodbRepo) DeleteListing(ctx context.Context, id primitive.ObjectID) error {
	res, err := mdb.collection(ListingsCol).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("listing %s: %w", id.Hex(), ErrNotFound)
	}

	if _, err := mdb.collection(FavouritesCol).DeleteMany(ctx, bson.M{"listing_id": id}); err != nil {
		return fmt.Errorf("failed to cascade favourites: %v", err)
	}
	return nil
}
