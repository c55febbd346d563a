package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sell-it/server/internal/models"
	"github.com/sell-it/server/internal/services"
)

func CreateListing(ls *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateListingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		listing, err := ls.CreateListing(c.Request.Context(), currentPrincipal(c), &input)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(listing, "Listing created successfully"))
	}
}

func GetListing(ls *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}

		expandOwner := c.DefaultQuery("expand", "owner") == "owner"
		listing, err := ls.GetListing(c.Request.Context(), listingID, expandOwner)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(listing, ""))
	}
}

func BrowseListings(ls *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := parsePagination(c)
		if !ok {
			return
		}

		query := models.ListingQuery{
			Search:    c.Query("q"),
			Category:  c.Query("category"),
			Condition: c.Query("condition"),
			Sort:      c.DefaultQuery("sort", "newest"),
		}
		if raw := c.Query("min_price"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid min_price parameter"))
				return
			}
			query.MinPrice = v
		}
		if raw := c.Query("max_price"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid max_price parameter"))
				return
			}
			query.MaxPrice = v
		}

		listings, total, err := ls.Browse(c.Request.Context(), query, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		page := (offset / limit) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(listings, page, limit, total))
	}
}

func UpdateListing(ls *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}

		var input services.UpdateListingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		listing, err := ls.UpdateListing(c.Request.Context(), currentPrincipal(c), listingID, &input)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(listing, "Listing updated"))
	}
}

func DeleteListing(ls *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}

		if err := ls.DeleteListing(c.Request.Context(), currentPrincipal(c), listingID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Listing deleted"))
	}
}
