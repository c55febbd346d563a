package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sell-it/server/internal/models"
	"github.com/sell-it/server/internal/services"
)

func VerifyEmail(vs *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		user, err := vs.VerifyEmail(c.Request.Context(), strings.TrimSpace(req.Token))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(user, "Email verified successfully"))
	}
}

// ResendVerificationEmail is public and deliberately answers the same way
// whether the address exists, is already verified, or got a fresh token.
// Anything else would let callers enumerate accounts by email.
func ResendVerificationEmail(vs *services.VerificationService) gin.HandlerFunc {
	const genericMessage = "If an account exists for that address, a verification email has been sent"

	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		err := vs.ResendEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil && !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrAlreadyVerified) {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, genericMessage))
	}
}

func RequestPhoneCode(vs *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := vs.RequestPhoneCode(c.Request.Context(), currentPrincipal(c)); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Verification code sent"))
	}
}

func VerifyPhone(vs *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Code string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		user, err := vs.VerifyPhone(c.Request.Context(), currentPrincipal(c), strings.TrimSpace(req.Code))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(user, "Phone verified successfully"))
	}
}
