package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrEmailNotVerified, http.StatusForbidden},
		{ErrPhoneNotVerified, http.StatusForbidden},
		{ErrNotOwner, http.StatusForbidden},
		{ErrCannotFavouriteOwnListing, http.StatusForbidden},
		{ErrAlreadyVerified, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrExpired, http.StatusGone},
		{ErrInvalidToken, http.StatusBadRequest},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInvalidCode, http.StatusBadRequest},
		{ErrInvalidIdentifier, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{errors.New("mongo: write concern error"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForError(tt.err), "%v", tt.err)
	}
}

func TestStatusForErrorUnwrapsChains(t *testing.T) {
	wrapped := fmt.Errorf("updating listing: %w", ErrNotOwner)
	assert.Equal(t, http.StatusForbidden, StatusForError(wrapped))

	twice := fmt.Errorf("handler: %w", wrapped)
	assert.Equal(t, http.StatusForbidden, StatusForError(twice))
}

func TestIsDomainError(t *testing.T) {
	assert.True(t, IsDomainError(ErrConflict))
	assert.True(t, IsDomainError(fmt.Errorf("ctx: %w", ErrExpired)))
	assert.False(t, IsDomainError(errors.New("connection reset")))
}
