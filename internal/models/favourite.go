package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favourite is one document per (user, listing) pair. A unique compound index
// on user_id+listing_id makes the pair invariant a storage-level guarantee;
// inserting a duplicate surfaces as ErrConflict.
type Favourite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ListingID primitive.ObjectID `bson:"listing_id" json:"listing_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	// Populated only by ListByUser.
	Listing *Listing `bson:"-" json:"listing,omitempty"`
}
