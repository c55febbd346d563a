package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FavouriteRepo interface {
	AddFavourite(ctx context.Context, fav *Favourite) (*Favourite, error)
	RemoveFavourite(ctx context.Context, userID, listingID primitive.ObjectID) error
	ListFavouritesByUser(ctx context.Context, userID primitive.ObjectID) ([]*Favourite, error)
	ListFavouriteIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

func (mdb *MongodbRepo) AddFavourite(ctx context.Context, fav *Favourite) (*Favourite, error) {
	res, err := mdb.collection(FavouritesCol).InsertOne(ctx, fav)
	if err != nil {
		// The unique (user_id, listing_id) index enforces at most one
		// favourite per pair.
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("listing already favourited: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to add favourite: %v", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		fav.ID = oid
	}
	return fav, nil
}

func (mdb *MongodbRepo) RemoveFavourite(ctx context.Context, userID, listingID primitive.ObjectID) error {
	res, err := mdb.collection(FavouritesCol).DeleteOne(ctx, bson.M{
		"user_id":    userID,
		"listing_id": listingID,
	})
	if err != nil {
		return fmt.Errorf("failed to remove favourite: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("favourite for listing %s: %w", listingID.Hex(), ErrNotFound)
	}
	return nil
}

// ListFavouritesByUser returns the user's favourites newest first, each with
// its listing populated. Favourites cascade with listings, so a missing
// listing can only be a same-instant delete; those entries are skipped.
func (mdb *MongodbRepo) ListFavouritesByUser(ctx context.Context, userID primitive.ObjectID) ([]*Favourite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := mdb.collection(FavouritesCol).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find favourites: %v", err)
	}
	defer cursor.Close(ctx)

	favourites := []*Favourite{}
	listingIDs := []primitive.ObjectID{}
	for cursor.Next(ctx) {
		var fav Favourite
		if err := cursor.Decode(&fav); err != nil {
			return nil, fmt.Errorf("failed to decode favourite: %v", err)
		}
		favourites = append(favourites, &fav)
		listingIDs = append(listingIDs, fav.ListingID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	if len(favourites) == 0 {
		return favourites, nil
	}

	listingCursor, err := mdb.collection(ListingsCol).Find(ctx, bson.M{"_id": bson.M{"$in": listingIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to load favourited listings: %v", err)
	}
	defer listingCursor.Close(ctx)

	byID := make(map[primitive.ObjectID]*Listing, len(listingIDs))
	for listingCursor.Next(ctx) {
		var l Listing
		if err := listingCursor.Decode(&l); err != nil {
			return nil, fmt.Errorf("failed to decode listing: %v", err)
		}
		byID[l.ID] = &l
	}
	if err := listingCursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	populated := favourites[:0]
	for _, fav := range favourites {
		if l, ok := byID[fav.ListingID]; ok {
			fav.Listing = l
			populated = append(populated, fav)
		}
	}
	return populated, nil
}

func (mdb *MongodbRepo) ListFavouriteIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"listing_id": 1})
	cursor, err := mdb.collection(FavouritesCol).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find favourite ids: %v", err)
	}
	defer cursor.Close(ctx)

	ids := []primitive.ObjectID{}
	for cursor.Next(ctx) {
		var fav Favourite
		if err := cursor.Decode(&fav); err != nil {
			return nil, fmt.Errorf("failed to decode favourite: %v", err)
		}
		ids = append(ids, fav.ListingID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return ids, nil
}
