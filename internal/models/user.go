package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username" validate:"required"`
	Name     string             `bson:"name" json:"name" validate:"required,min=2,max=50"`
	Email    string             `bson:"email" json:"email" validate:"required,email"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`

	// Never serialized; set only through the registration path.
	PasswordHash string `bson:"password" json:"-"`

	EmailVerified       bool       `bson:"email_verified" json:"email_verified"`
	EmailTokenHash      string     `bson:"email_verification_token,omitempty" json:"-"`
	EmailTokenExpiresAt *time.Time `bson:"email_verification_expires,omitempty" json:"-"`

	PhoneVerified      bool       `bson:"phone_verified" json:"phone_verified"`
	PhoneCodeHash      string     `bson:"phone_verification_code,omitempty" json:"-"`
	PhoneCodeExpiresAt *time.Time `bson:"phone_verification_expires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PublicProfile is the owner shape embedded in expanded listing responses.
type PublicProfile struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Name     string             `bson:"name" json:"name"`
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{ID: u.ID, Username: u.Username, Name: u.Name}
}
