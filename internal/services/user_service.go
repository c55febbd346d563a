package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sell-it/server/internal/helpers"
	"github.com/sell-it/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	userRepo     models.UserRepo
	verification *VerificationService
}

func NewUserService(userRepo models.UserRepo, verification *VerificationService) *UserService {
	return &UserService{
		userRepo:     userRepo,
		verification: verification,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

// Register creates an unverified account and kicks off email verification.
// A failed mail delivery is logged but does not fail registration; the user
// can always ask for a resend.
func (us *UserService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid registration data: %v: %w", err, models.ErrInvalidInput)
	}
	if !helpers.IsValidUsername(input.Username) {
		return nil, fmt.Errorf("username must be 3-30 characters of letters, digits or underscore: %w", models.ErrInvalidIdentifier)
	}
	if !helpers.IsPasswordStrong(input.Password) {
		return nil, fmt.Errorf("password must be at least 8 characters with upper, lower, digit and special: %w", models.ErrInvalidIdentifier)
	}

	hash, err := helpers.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Username:     input.Username,
		Name:         input.Name,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:        input.Phone,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := us.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	us.verification.SendInitialEmail(ctx, created)
	return created, nil
}

// Authenticate resolves email+password to an account. Both unknown email and
// wrong password collapse to Unauthenticated so login cannot enumerate
// accounts.
func (us *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("invalid email or password: %w", models.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("invalid email or password: %w", models.ErrUnauthenticated)
	}
	return user, nil
}

func (us *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return us.userRepo.GetUserByID(ctx, id)
}

type UpdateProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=50"`
	Phone *string `json:"phone" validate:"omitempty,e164"`
}

// UpdateProfile lets a principal edit its own safe fields. A phone change
// drops phone verification; the new number has proven nothing yet.
func (us *UserService) UpdateProfile(ctx context.Context, p *Principal, id primitive.ObjectID, input *UpdateProfileInput) (*models.User, error) {
	if p == nil {
		return nil, models.ErrUnauthenticated
	}
	if p.ID != id {
		return nil, models.ErrNotOwner
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid profile data: %v: %w", err, models.ErrInvalidInput)
	}

	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user, err = us.userRepo.UpdateUser(ctx, id, map[string]interface{}{"name": *input.Name})
		if err != nil {
			return nil, err
		}
	}
	if input.Phone != nil && *input.Phone != user.Phone {
		user, err = us.userRepo.SetPhone(ctx, id, *input.Phone)
		if err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (us *UserService) DeleteAccount(ctx context.Context, p *Principal, id primitive.ObjectID) error {
	if p == nil {
		return models.ErrUnauthenticated
	}
	if p.ID != id {
		return models.ErrNotOwner
	}
	return us.userRepo.DeleteUser(ctx, id)
}
