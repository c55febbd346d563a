package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sell-it/server/internal/helpers"
	"github.com/sell-it/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageStore holds listing images. Delete is best-effort cleanup and reports
// nothing; a leaked asset is preferable to failing the request that no longer
// needs it.
type ImageStore interface {
	Upload(ctx context.Context, images []string, folder string) (urls, publicIDs []string, err error)
	Delete(ctx context.Context, publicIDs []string)
}

type ListingService struct {
	listingRepo models.ListingRepo
	gate        *Gate
	images      ImageStore

	uploadTimeout time.Duration
}

func NewListingService(listingRepo models.ListingRepo, gate *Gate, images ImageStore) *ListingService {
	return &ListingService{
		listingRepo:   listingRepo,
		gate:          gate,
		images:        images,
		uploadTimeout: 30 * time.Second,
	}
}

type CreateListingInput struct {
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"required,min=10,max=2000"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Images      []string `json:"images" validate:"required,min=1,max=5,dive,required"`
	Category    string   `json:"category" validate:"required,max=50"`
	Condition   string   `json:"condition" validate:"required,oneof=New 'Like New' Good Fair"`
}

func (ls *ListingService) CreateListing(ctx context.Context, p *Principal, input *CreateListingInput) (*models.Listing, error) {
	if err := ls.gate.Authorize(p, ActionCreateListing); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid listing data: %v: %w", err, models.ErrInvalidInput)
	}

	urls, publicIDs, err := ls.uploadImages(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	listing := &models.Listing{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Images:      urls,
		ImageIDs:    publicIDs,
		Category:    input.Category,
		Condition:   models.Condition(input.Condition),
		Owner:       models.Owner{ID: p.ID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := ls.listingRepo.CreateListing(ctx, listing)
	if err != nil {
		// Creation failed after upload; remove the now-orphaned images.
		ls.images.Delete(ctx, publicIDs)
		return nil, err
	}
	return created, nil
}

// uploadImages pushes the images to the store as an awaited task with a
// deadline, so a stuck upstream cannot hold the request open indefinitely.
func (ls *ListingService) uploadImages(ctx context.Context, images []string) ([]string, []string, error) {
	type uploadResult struct {
		urls      []string
		publicIDs []string
	}
	uploadChan := make(chan uploadResult, 1)
	errorChan := make(chan error, 1)

	go func() {
		urls, publicIDs, err := ls.images.Upload(ctx, images, helpers.ListingFolder)
		if err != nil {
			errorChan <- err
			return
		}
		uploadChan <- uploadResult{urls, publicIDs}
	}()

	select {
	case result := <-uploadChan:
		return result.urls, result.publicIDs, nil
	case err := <-errorChan:
		return nil, nil, fmt.Errorf("failed to upload images: %v", err)
	case <-time.After(ls.uploadTimeout):
		// The request gives up, but the upload may still land. Drain the
		// channels so a late success is reaped instead of orphaned.
		go func() {
			select {
			case result := <-uploadChan:
				ls.images.Delete(context.Background(), result.publicIDs)
			case <-errorChan:
			}
		}()
		return nil, nil, fmt.Errorf("image upload timeout")
	}
}

func (ls *ListingService) GetListing(ctx context.Context, id primitive.ObjectID, expandOwner bool) (*models.Listing, error) {
	listing, err := ls.listingRepo.GetListingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expandOwner {
		if err := ls.listingRepo.ExpandOwner(ctx, listing); err != nil {
			return nil, err
		}
	}
	return listing, nil
}

func (ls *ListingService) Browse(ctx context.Context, query models.ListingQuery, offset, limit int) ([]*models.Listing, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit: %w", models.ErrInvalidIdentifier)
	}
	return ls.listingRepo.ListListings(ctx, query, offset, limit)
}

func (ls *ListingService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, offset, limit int) ([]*models.Listing, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit: %w", models.ErrInvalidIdentifier)
	}
	return ls.listingRepo.ListListingsByOwner(ctx, ownerID, offset, limit)
}

type UpdateListingInput struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=100"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=2000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Category    *string  `json:"category" validate:"omitempty,max=50"`
	Condition   *string  `json:"condition" validate:"omitempty,oneof=New 'Like New' Good Fair"`
}

func (ls *ListingService) UpdateListing(ctx context.Context, p *Principal, id primitive.ObjectID, input *UpdateListingInput) (*models.Listing, error) {
	// Verification gating runs before the listing is even looked up, so an
	// unverified caller gets the same answer for any identifier.
	if err := ls.gate.Authorize(p, ActionUpdateListing); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid listing data: %v: %w", err, models.ErrInvalidInput)
	}

	listing, err := ls.listingRepo.GetListingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ls.gate.AuthorizeOwner(p, ActionUpdateListing, listing.Owner.ID); err != nil {
		return nil, err
	}

	set := map[string]interface{}{}
	if input.Title != nil {
		set["title"] = *input.Title
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Price != nil {
		set["price"] = *input.Price
	}
	if input.Category != nil {
		set["category"] = *input.Category
	}
	if input.Condition != nil {
		set["condition"] = *input.Condition
	}
	if len(set) == 0 {
		return listing, nil
	}

	return ls.listingRepo.UpdateListing(ctx, id, set)
}

func (ls *ListingService) DeleteListing(ctx context.Context, p *Principal, id primitive.ObjectID) error {
	if err := ls.gate.Authorize(p, ActionDeleteListing); err != nil {
		return err
	}

	listing, err := ls.listingRepo.GetListingByID(ctx, id)
	if err != nil {
		return err
	}
	if err := ls.gate.AuthorizeOwner(p, ActionDeleteListing, listing.Owner.ID); err != nil {
		return err
	}

	if err := ls.listingRepo.DeleteListing(ctx, id); err != nil {
		return err
	}
	ls.images.Delete(ctx, listing.ImageIDs)
	return nil
}
