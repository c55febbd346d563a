package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sell-it/server/internal/config"
	"github.com/sell-it/server/internal/models"
	"github.com/sell-it/server/internal/services"
)

// GetProfile returns the authenticated account, verification flags included.
func GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			respondError(c, models.ErrUnauthenticated)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

// GetUser returns another account's public profile.
func GetUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}

		user, err := u.GetUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(user.Public(), ""))
	}
}

func UpdateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}

		var input services.UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user, err := u.UpdateProfile(c.Request.Context(), currentPrincipal(c), userID, &input)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(user, "Profile updated"))
	}
}

func DeleteUser(cfg *config.Config, u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}

		if err := u.DeleteAccount(c.Request.Context(), currentPrincipal(c), userID); err != nil {
			respondError(c, err)
			return
		}

		// The session's account is gone; drop its cookies too.
		secure := cfg.IsProduction()
		c.SetCookie("access_token", "", -1, "/", "", secure, true)
		c.SetCookie("refresh_token", "", -1, "/", "", secure, true)

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Account deleted"))
	}
}

// ListUserListings is a public read of a user's listings.
func ListUserListings(ls *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		offset, limit, ok := parsePagination(c)
		if !ok {
			return
		}

		listings, total, err := ls.ListByOwner(c.Request.Context(), ownerID, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		page := (offset / limit) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(listings, page, limit, total))
	}
}
