package models

import (
	"errors"
	"net/http"
)

// Domain rejection kinds. Every deterministic rejection the API can produce is
// one of these sentinels (possibly wrapped with %w); anything else is treated
// as an internal failure and never mapped to a client-facing kind.
var (
	ErrUnauthenticated = errors.New("authentication required")

	ErrEmailNotVerified = errors.New("email address not verified")
	ErrPhoneNotVerified = errors.New("phone number not verified")
	ErrAlreadyVerified  = errors.New("already verified")

	ErrExpired      = errors.New("verification has expired")
	ErrInvalidToken = errors.New("invalid verification token")
	ErrInvalidCode  = errors.New("invalid verification code")

	ErrNotOwner                  = errors.New("not the owner of this resource")
	ErrCannotFavouriteOwnListing = errors.New("cannot favourite your own listing")

	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
)

// StatusForError maps a rejection kind to its stable HTTP status. The mapping
// never changes between releases; clients key off it.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmailNotVerified),
		errors.Is(err, ErrPhoneNotVerified),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrCannotFavouriteOwnListing):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyVerified), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsDomainError reports whether err belongs to the rejection taxonomy, as
// opposed to an internal failure whose detail must not reach the client.
func IsDomainError(err error) bool {
	return StatusForError(err) != http.StatusInternalServerError
}
