package services

import (
	"context"
	"testing"
	"time"

	"github.com/sell-it/server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newListingFixture() (*ListingService, *fakeListingRepo, *fakeImageStore) {
	repo := newFakeListingRepo()
	store := &fakeImageStore{}
	return NewListingService(repo, NewGate(), store), repo, store
}

func validCreateInput() *CreateListingInput {
	return &CreateListingInput{
		Title:       "Mountain bike",
		Description: "Hardly used, good brakes, new tyres.",
		Price:       450,
		Images:      []string{"bike-front.jpg"},
		Category:    "Sports",
		Condition:   "Good",
	}
}

func TestCreateListing(t *testing.T) {
	ctx := context.Background()
	ls, _, store := newListingFixture()

	t.Run("fully verified owner creates", func(t *testing.T) {
		p := verifiedPrincipal()
		listing, err := ls.CreateListing(ctx, p, validCreateInput())
		require.NoError(t, err)
		assert.Equal(t, p.ID, listing.Owner.ID)
		assert.Len(t, listing.Images, 1)
		assert.Len(t, store.uploadedIDs(), 1)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := ls.CreateListing(ctx, nil, validCreateInput())
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("email unverified", func(t *testing.T) {
		p := &Principal{ID: primitive.NewObjectID()}
		_, err := ls.CreateListing(ctx, p, validCreateInput())
		assert.ErrorIs(t, err, models.ErrEmailNotVerified)
	})

	t.Run("phone unverified", func(t *testing.T) {
		p := &Principal{ID: primitive.NewObjectID(), EmailVerified: true}
		_, err := ls.CreateListing(ctx, p, validCreateInput())
		assert.ErrorIs(t, err, models.ErrPhoneNotVerified)
	})

	t.Run("invalid payload rejects before upload", func(t *testing.T) {
		input := validCreateInput()
		input.Images = nil
		uploadsBefore := len(store.uploadedIDs())
		_, err := ls.CreateListing(ctx, verifiedPrincipal(), input)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		assert.Len(t, store.uploadedIDs(), uploadsBefore)
	})

	t.Run("invalid condition rejects", func(t *testing.T) {
		input := validCreateInput()
		input.Condition = "Broken"
		_, err := ls.CreateListing(ctx, verifiedPrincipal(), input)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestCreateListingUploadTimeoutReapsImages(t *testing.T) {
	ctx := context.Background()
	ls, _, store := newListingFixture()
	ls.uploadTimeout = 10 * time.Millisecond
	store.delay = 50 * time.Millisecond

	_, err := ls.CreateListing(ctx, verifiedPrincipal(), validCreateInput())
	require.Error(t, err)

	// The upload lands after the request gave up; the late result must be
	// drained and its assets destroyed rather than orphaned.
	assert.Eventually(t, func() bool {
		uploaded := store.uploadedIDs()
		return len(uploaded) > 0 && assert.ObjectsAreEqual(uploaded, store.deletedIDs())
	}, time.Second, 5*time.Millisecond)
}

func TestUpdateListing(t *testing.T) {
	ctx := context.Background()
	ls, repo, _ := newListingFixture()

	owner := verifiedPrincipal()
	listing := repo.add(&models.Listing{
		Title: "Old title",
		Price: 100,
		Owner: models.Owner{ID: owner.ID},
	})

	newTitle := "Fresh title"

	t.Run("owner updates", func(t *testing.T) {
		updated, err := ls.UpdateListing(ctx, owner, listing.ID, &UpdateListingInput{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		_, err := ls.UpdateListing(ctx, verifiedPrincipal(), listing.ID, &UpdateListingInput{Title: &newTitle})
		assert.ErrorIs(t, err, models.ErrNotOwner)
	})

	t.Run("verification outranks ownership", func(t *testing.T) {
		emailOnly := &Principal{ID: owner.ID, EmailVerified: true}
		_, err := ls.UpdateListing(ctx, emailOnly, listing.ID, &UpdateListingInput{Title: &newTitle})
		assert.ErrorIs(t, err, models.ErrPhoneNotVerified)
	})

	t.Run("absent listing is not found", func(t *testing.T) {
		_, err := ls.UpdateListing(ctx, owner, primitive.NewObjectID(), &UpdateListingInput{Title: &newTitle})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("too-short title is invalid input", func(t *testing.T) {
		short := "ab"
		_, err := ls.UpdateListing(ctx, owner, listing.ID, &UpdateListingInput{Title: &short})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		got, err := ls.UpdateListing(ctx, owner, listing.ID, &UpdateListingInput{})
		require.NoError(t, err)
		assert.Equal(t, listing.ID, got.ID)
	})
}

func TestDeleteListing(t *testing.T) {
	ctx := context.Background()
	ls, repo, store := newListingFixture()

	owner := verifiedPrincipal()
	listing := repo.add(&models.Listing{
		Owner:    models.Owner{ID: owner.ID},
		ImageIDs: []string{"listings/bike-front.jpg-0"},
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		err := ls.DeleteListing(ctx, verifiedPrincipal(), listing.ID)
		assert.ErrorIs(t, err, models.ErrNotOwner)
	})

	t.Run("owner deletes once and images go with it", func(t *testing.T) {
		require.NoError(t, ls.DeleteListing(ctx, owner, listing.ID))
		assert.Equal(t, listing.ImageIDs, store.deletedIDs())

		err := ls.DeleteListing(ctx, owner, listing.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestBrowsePagination(t *testing.T) {
	ctx := context.Background()
	ls, _, _ := newListingFixture()

	_, _, err := ls.Browse(ctx, models.ListingQuery{}, -1, 10)
	assert.ErrorIs(t, err, models.ErrInvalidIdentifier)

	_, _, err = ls.Browse(ctx, models.ListingQuery{}, 0, 0)
	assert.ErrorIs(t, err, models.ErrInvalidIdentifier)
}
