package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sell-it/server/internal/models"
	"github.com/sell-it/server/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func currentPrincipal(c *gin.Context) *services.Principal {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}
	return services.PrincipalFromUser(user)
}

// respondError maps a domain rejection to its stable status; anything outside
// the taxonomy is an internal failure and responds 500 without detail.
func respondError(c *gin.Context, err error) {
	if models.IsDomainError(err) {
		c.JSON(models.StatusForError(err), models.ErrorResponse(err.Error()))
		return
	}
	requestID, _ := c.Get("request_id")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":      "Internal server error",
		"request_id": requestID,
	})
}

// parseObjectID rejects a malformed identifier before anything touches the
// database, so a bad id can never leak existence information.
func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		respondError(c, models.ErrInvalidIdentifier)
		return primitive.NilObjectID, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int, ok bool) {
	limitStr := c.DefaultQuery("limit", "20")
	offsetStr := c.DefaultQuery("offset", "0")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
		return 0, 0, false
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid offset parameter"))
		return 0, 0, false
	}
	return offset, limit, true
}
