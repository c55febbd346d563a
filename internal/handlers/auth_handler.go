package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sell-it/server/internal/config"
	"github.com/sell-it/server/internal/helpers"
	"github.com/sell-it/server/internal/middleware"
	"github.com/sell-it/server/internal/models"
	"github.com/sell-it/server/internal/services"
)

func Signup(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user, err := u.Register(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(user, "Account created; check your email for a verification token"))
	}
}

func Login(cfg *config.Config, u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		user, err := u.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		accessToken, err := helpers.SignToken(cfg.JWTSecret, user.ID.Hex(), helpers.TokenTypeAccess, cfg.AccessTokenTTL)
		if err != nil {
			respondError(c, err)
			return
		}
		refreshToken, err := helpers.SignToken(cfg.JWTSecret, user.ID.Hex(), helpers.TokenTypeRefresh, cfg.RefreshTokenTTL)
		if err != nil {
			respondError(c, err)
			return
		}

		middleware.SetAuthCookies(c, cfg, accessToken, refreshToken)
		c.JSON(http.StatusOK, models.SuccessResponse(user, "Logged in successfully"))
	}
}

func Logout(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		secure := cfg.IsProduction()
		c.SetCookie("access_token", "", -1, "/", "", secure, true)
		c.SetCookie("refresh_token", "", -1, "/", "", secure, true)

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}
