package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sell-it/server/internal/models"
	"github.com/sell-it/server/internal/services"
)

func AddToFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}

		fav, err := f.AddFavourite(c.Request.Context(), currentPrincipal(c), listingID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(fav, "Listing added to favourites"))
	}
}

func RemoveFromFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}

		if err := f.RemoveFavourite(c.Request.Context(), currentPrincipal(c), listingID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Listing removed from favourites"))
	}
}

func GetUserFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		favourites, err := f.ListFavourites(c.Request.Context(), currentPrincipal(c))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(favourites, ""))
	}
}

// GetFavouriteIDs returns bare listing IDs so clients can paint favourite
// state without fetching full listings.
func GetFavouriteIDs(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := f.ListFavouriteIDs(c.Request.Context(), currentPrincipal(c))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(ids, ""))
	}
}
