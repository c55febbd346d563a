package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sell-it/server/internal/container"
	"github.com/sell-it/server/internal/handlers"
	"github.com/sell-it/server/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(appContainer *container.Container) *gin.Engine {
	cfg := appContainer.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(appContainer.Logger))
	r.Use(middleware.ErrorHandler(appContainer.Logger))
	r.Use(gin.Recovery())

	verificationLimit := middleware.RateLimitPerIP(cfg.VerificationRPS, cfg.VerificationBurst)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "sellit-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.Signup(appContainer.UserService))
		v1.POST("/login", handlers.Login(cfg, appContainer.UserService))
		v1.POST("/logout", handlers.Logout(cfg))

		v1.POST("/verify-email", handlers.VerifyEmail(appContainer.VerificationService))
		v1.POST("/verify-email/resend", verificationLimit, handlers.ResendVerificationEmail(appContainer.VerificationService))

		// browsing is open to everyone, verified or not
		v1.GET("/listings", handlers.BrowseListings(appContainer.ListingService))
		v1.GET("/listings/:id", handlers.GetListing(appContainer.ListingService))
		v1.GET("/users/:id", handlers.GetUser(appContainer.UserService))
		v1.GET("/users/:id/listings", handlers.ListUserListings(appContainer.ListingService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, appContainer.UserService, appContainer.Logger))
	{
		protected.GET("/profile", handlers.GetProfile())

		protected.POST("/verify-phone/request", verificationLimit, handlers.RequestPhoneCode(appContainer.VerificationService))
		protected.POST("/verify-phone/confirm", handlers.VerifyPhone(appContainer.VerificationService))

		userRoutes := protected.Group("/users")
		{
			userRoutes.PATCH("/:id", handlers.UpdateUser(appContainer.UserService))
			userRoutes.DELETE("/:id", handlers.DeleteUser(cfg, appContainer.UserService))
		}

		listingRoutes := protected.Group("/listings")
		{
			listingRoutes.POST("/", handlers.CreateListing(appContainer.ListingService))
			listingRoutes.PATCH("/:id", handlers.UpdateListing(appContainer.ListingService))
			listingRoutes.DELETE("/:id", handlers.DeleteListing(appContainer.ListingService))
		}

		favouriteRoutes := protected.Group("/favourites")
		{
			favouriteRoutes.GET("/", handlers.GetUserFavourites(appContainer.FavouriteService))
			favouriteRoutes.GET("/ids", handlers.GetFavouriteIDs(appContainer.FavouriteService))
			favouriteRoutes.POST("/:id", handlers.AddToFavourites(appContainer.FavouriteService))
			favouriteRoutes.DELETE("/:id", handlers.RemoveFromFavourites(appContainer.FavouriteService))
		}
	}

	return r
}
