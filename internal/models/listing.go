package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
)

// Owner is a two-state reference to the listing's owner: either a bare
// identifier or an identifier plus the expanded profile. Profile is nil unless
// the query asked for expansion, and callers must check Expanded before using
// it so a reference is never mistaken for an expanded record.
type Owner struct {
	ID      primitive.ObjectID `bson:"id" json:"id"`
	Profile *PublicProfile     `bson:"-" json:"profile,omitempty"`
}

func (o Owner) Expanded() bool { return o.Profile != nil }

type Listing struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required,min=3,max=100"`
	Description string             `bson:"description" json:"description" validate:"required,min=10,max=2000"`
	Price       float64            `bson:"price" json:"price" validate:"required,gt=0"`
	Images      []string           `bson:"images" json:"images" validate:"required,min=1,max=5"`
	ImageIDs    []string           `bson:"image_ids,omitempty" json:"-"`
	Category    string             `bson:"category" json:"category" validate:"required,max=50"`
	Condition   Condition          `bson:"condition" json:"condition" validate:"required,oneof=New 'Like New' Good Fair"`

	Owner Owner `bson:"owner" json:"owner"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ListingQuery carries the browse filters; zero values mean "no filter".
type ListingQuery struct {
	Search    string
	Category  string
	Condition string
	MinPrice  float64
	MaxPrice  float64
	Sort      string // "newest", "price_asc", "price_desc"
}
