package services

import (
	"context"
	"time"

	"github.com/sell-it/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FavouriteService struct {
	favouriteRepo models.FavouriteRepo
	listingRepo   models.ListingRepo
	gate          *Gate
}

func NewFavouriteService(favouriteRepo models.FavouriteRepo, listingRepo models.ListingRepo, gate *Gate) *FavouriteService {
	return &FavouriteService{
		favouriteRepo: favouriteRepo,
		listingRepo:   listingRepo,
		gate:          gate,
	}
}

func (fs *FavouriteService) AddFavourite(ctx context.Context, p *Principal, listingID primitive.ObjectID) (*models.Favourite, error) {
	if err := fs.gate.Authorize(p, ActionCreateFavourite); err != nil {
		return nil, err
	}

	listing, err := fs.listingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := fs.gate.AuthorizeOwner(p, ActionCreateFavourite, listing.Owner.ID); err != nil {
		return nil, err
	}

	fav := &models.Favourite{
		UserID:    p.ID,
		ListingID: listingID,
		CreatedAt: time.Now(),
	}
	return fs.favouriteRepo.AddFavourite(ctx, fav)
}

// RemoveFavourite deletes the caller's own pair; the user-scoped filter makes
// touching someone else's favourite impossible by construction.
func (fs *FavouriteService) RemoveFavourite(ctx context.Context, p *Principal, listingID primitive.ObjectID) error {
	if err := fs.gate.Authorize(p, ActionDeleteFavourite); err != nil {
		return err
	}
	return fs.favouriteRepo.RemoveFavourite(ctx, p.ID, listingID)
}

// Reads below require a session but bypass verification gating.

func (fs *FavouriteService) ListFavourites(ctx context.Context, p *Principal) ([]*models.Favourite, error) {
	if p == nil {
		return nil, models.ErrUnauthenticated
	}
	return fs.favouriteRepo.ListFavouritesByUser(ctx, p.ID)
}

func (fs *FavouriteService) ListFavouriteIDs(ctx context.Context, p *Principal) ([]primitive.ObjectID, error) {
	if p == nil {
		return nil, models.ErrUnauthenticated
	}
	return fs.favouriteRepo.ListFavouriteIDsByUser(ctx, p.ID)
}
