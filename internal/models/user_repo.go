package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepo is the credential store: identity, password hash and verification
// state with its lifecycle. Redemption methods are atomic check-and-clear —
// a single conditional update, never read-then-write — so two concurrent
// attempts on the same artifact cannot both succeed.
type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*User, error)
	SetPhone(ctx context.Context, id primitive.ObjectID, phone string) (*User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error

	SetEmailToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error
	RedeemEmailToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)
	SetPhoneCode(ctx context.Context, id primitive.ObjectID, codeHash string, expires time.Time) error
	RedeemPhoneCode(ctx context.Context, id primitive.ObjectID, codeHash string, now time.Time) (*User, error)
}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	res, err := mdb.collection(UsersCol).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("email or username already taken: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	err := mdb.collection(UsersCol).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := mdb.collection(UsersCol).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %v", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*User, error) {
	set["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated User
	err := mdb.collection(UsersCol).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}
	return &updated, nil
}

// SetPhone replaces the phone number and resets phone verification in the
// same update; a number that was never re-verified must not stay verified.
func (mdb *MongodbRepo) SetPhone(ctx context.Context, id primitive.ObjectID, phone string) (*User, error) {
	update := bson.M{
		"$set": bson.M{
			"phone":          phone,
			"phone_verified": false,
			"updated_at":     time.Now(),
		},
		"$unset": bson.M{
			"phone_verification_code":    "",
			"phone_verification_expires": "",
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated User
	err := mdb.collection(UsersCol).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update phone: %v", err)
	}
	return &updated, nil
}

// DeleteUser removes the account and cascades: owned listings go, and so does
// every favourite referencing the account or one of its listings.
func (mdb *MongodbRepo) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	cursor, err := mdb.collection(ListingsCol).Find(ctx,
		bson.M{"owner.id": id},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return fmt.Errorf("failed to find owned listings: %v", err)
	}
	var owned []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &owned); err != nil {
		return fmt.Errorf("failed to read owned listings: %v", err)
	}

	listingIDs := make([]primitive.ObjectID, 0, len(owned))
	for _, l := range owned {
		listingIDs = append(listingIDs, l.ID)
	}

	_, err = mdb.collection(FavouritesCol).DeleteMany(ctx, bson.M{
		"$or": []bson.M{
			{"user_id": id},
			{"listing_id": bson.M{"$in": listingIDs}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to cascade favourites: %v", err)
	}

	if _, err := mdb.collection(ListingsCol).DeleteMany(ctx, bson.M{"owner.id": id}); err != nil {
		return fmt.Errorf("failed to cascade listings: %v", err)
	}

	res, err := mdb.collection(UsersCol).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) SetEmailToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	res, err := mdb.collection(UsersCol).UpdateOne(ctx,
		bson.M{"_id": id, "email_verified": false},
		bson.M{"$set": bson.M{
			"email_verification_token":   tokenHash,
			"email_verification_expires": expires,
			"updated_at":                 time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to store email token: %v", err)
	}
	if res.MatchedCount == 0 {
		return mdb.verifiedOrMissing(ctx, id)
	}
	return nil
}

// verifiedOrMissing disambiguates a conditional verification update that
// matched nothing: either the account does not exist, or the channel is
// already verified.
func (mdb *MongodbRepo) verifiedOrMissing(ctx context.Context, id primitive.ObjectID) error {
	n, err := mdb.collection(UsersCol).CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check user: %v", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	return ErrAlreadyVerified
}

// RedeemEmailToken consumes a token in one conditional update. On success the
// token fields are cleared and email_verified flips in the same write; an
// expired token is also cleared (second conditional update) so it can never
// later become valid.
func (mdb *MongodbRepo) RedeemEmailToken(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	err := mdb.collection(UsersCol).FindOneAndUpdate(ctx,
		bson.M{
			"email_verification_token":   tokenHash,
			"email_verification_expires": bson.M{"$gt": now},
		},
		bson.M{
			"$set": bson.M{"email_verified": true, "updated_at": now},
			"$unset": bson.M{
				"email_verification_token":   "",
				"email_verification_expires": "",
			},
		},
		opts,
	).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to redeem email token: %v", err)
	}

	// Matching hash but lapsed expiry: clear it so the artifact is single-shot
	// even in rejection.
	res, err := mdb.collection(UsersCol).UpdateOne(ctx,
		bson.M{"email_verification_token": tokenHash},
		bson.M{"$unset": bson.M{
			"email_verification_token":   "",
			"email_verification_expires": "",
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to clear expired email token: %v", err)
	}
	if res.MatchedCount > 0 {
		return nil, ErrExpired
	}
	return nil, ErrInvalidToken
}

func (mdb *MongodbRepo) SetPhoneCode(ctx context.Context, id primitive.ObjectID, codeHash string, expires time.Time) error {
	res, err := mdb.collection(UsersCol).UpdateOne(ctx,
		bson.M{"_id": id, "phone_verified": false},
		bson.M{"$set": bson.M{
			"phone_verification_code":    codeHash,
			"phone_verification_expires": expires,
			"updated_at":                 time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to store phone code: %v", err)
	}
	if res.MatchedCount == 0 {
		return mdb.verifiedOrMissing(ctx, id)
	}
	return nil
}

// RedeemPhoneCode mirrors RedeemEmailToken but is scoped to one account, so a
// wrong guess is InvalidCode rather than InvalidToken.
func (mdb *MongodbRepo) RedeemPhoneCode(ctx context.Context, id primitive.ObjectID, codeHash string, now time.Time) (*User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	err := mdb.collection(UsersCol).FindOneAndUpdate(ctx,
		bson.M{
			"_id":                        id,
			"phone_verification_code":    codeHash,
			"phone_verification_expires": bson.M{"$gt": now},
		},
		bson.M{
			"$set": bson.M{"phone_verified": true, "updated_at": now},
			"$unset": bson.M{
				"phone_verification_code":    "",
				"phone_verification_expires": "",
			},
		},
		opts,
	).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to redeem phone code: %v", err)
	}

	res, err := mdb.collection(UsersCol).UpdateOne(ctx,
		bson.M{"_id": id, "phone_verification_code": codeHash},
		bson.M{"$unset": bson.M{
			"phone_verification_code":    "",
			"phone_verification_expires": "",
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to clear expired phone code: %v", err)
	}
	if res.MatchedCount > 0 {
		return nil, ErrExpired
	}
	return nil, ErrInvalidCode
}
