package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sell-it/server/internal/config"
	"github.com/sell-it/server/internal/helpers"
	"github.com/sell-it/server/internal/models"
	"github.com/sell-it/server/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler provides centralized error handling for errors pushed onto the
// gin context; handler-level rejections respond directly and never land here.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			// Don't return error details in production
			c.JSON(500, gin.H{
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// AuthMiddleware authenticates the request from the access-token cookie,
// transparently rotating the pair from the refresh cookie when the access
// token has expired, and loads the live account so downstream gating sees
// current verification flags.
func AuthMiddleware(cfg *config.Config, userService *services.UserService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "access token not found",
			})
			c.Abort()
			return
		}

		claims, err := helpers.ValidateToken(cfg.JWTSecret, token, helpers.TokenTypeAccess)
		if err != nil {
			refreshToken, refreshErr := c.Cookie("refresh_token")
			if refreshErr != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   err.Error(),
				})
				c.Abort()
				return
			}

			refreshClaims, refreshErr := helpers.ValidateToken(cfg.JWTSecret, refreshToken, helpers.TokenTypeRefresh)
			if refreshErr != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "token expired and refresh failed",
				})
				c.Abort()
				return
			}

			newAccess, signErr := helpers.SignToken(cfg.JWTSecret, refreshClaims.Subject, helpers.TokenTypeAccess, cfg.AccessTokenTTL)
			if signErr != nil {
				logger.Error("Token refresh failed", "error", signErr)
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "token refresh failed",
				})
				c.Abort()
				return
			}
			newRefresh, signErr := helpers.SignToken(cfg.JWTSecret, refreshClaims.Subject, helpers.TokenTypeRefresh, cfg.RefreshTokenTTL)
			if signErr != nil {
				logger.Error("Token refresh failed", "error", signErr)
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "token refresh failed",
				})
				c.Abort()
				return
			}

			SetAuthCookies(c, cfg, newAccess, newRefresh)
			logger.Info("Token refreshed", "user_id", refreshClaims.Subject)

			claims, err = helpers.ValidateToken(cfg.JWTSecret, newAccess, helpers.TokenTypeAccess)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "refreshed token validation failed",
				})
				c.Abort()
				return
			}
		}

		userID, parseErr := primitive.ObjectIDFromHex(claims.Subject)
		if parseErr != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "invalid user ID in token",
			})
			c.Abort()
			return
		}

		user, err := userService.GetUser(c.Request.Context(), userID)
		if errors.Is(err, models.ErrNotFound) {
			// Token outlived the account.
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "account no longer exists",
			})
			c.Abort()
			return
		}
		if err != nil {
			// A storage failure is not an authentication verdict.
			logger.Error("Failed to load account for session", "error", err)
			requestID, _ := c.Get("request_id")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": requestID,
			})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// SetAuthCookies writes the access/refresh pair the way the login handler
// does, so rotation and login stay in sync.
func SetAuthCookies(c *gin.Context, cfg *config.Config, accessToken, refreshToken string) {
	secure := cfg.IsProduction()
	c.SetCookie("access_token", accessToken, int(cfg.AccessTokenTTL.Seconds()), "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, int(cfg.RefreshTokenTTL.Seconds()), "/", "", secure, true)
}

// RateLimitPerIP applies a per-client-IP token bucket; used on the
// verification request/resend endpoints.
func RateLimitPerIP(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		lim, ok := buckets[ip]
		if !ok {
			lim = rate.NewLimiter(rate.Limit(rps), burst)
			buckets[ip] = lim
		}
		mu.Unlock()

		if lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "too many requests, slow down",
		})
	}
}
