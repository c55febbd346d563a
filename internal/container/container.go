package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/sell-it/server/internal/config"
	"github.com/sell-it/server/internal/helpers"
	"github.com/sell-it/server/internal/models"
	"github.com/sell-it/server/internal/notify"
	"github.com/sell-it/server/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger *slog.Logger
	Config *config.Config

	MongoDBClient *mongo.Client
	Cloudinary    *cloudinary.Cloudinary

	Repo *models.MongodbRepo

	UserService         *services.UserService
	VerificationService *services.VerificationService
	ListingService      *services.ListingService
	FavouriteService    *services.FavouriteService
}

// NewContainer wires repositories, collaborators and services once at startup.
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	mongoClient *mongo.Client,
	cld *cloudinary.Cloudinary,
) *Container {
	repo := models.MongodbNewRepo(mongoClient, cfg.MongoDBName)

	mailer := notify.NewSMTPMailer(cfg)
	sms := notify.NewTwilioSMS(cfg)
	gate := services.NewGate()

	verificationService := services.NewVerificationService(
		repo, mailer, sms, logger,
		cfg.EmailTokenTTL, cfg.PhoneCodeTTL,
	)
	userService := services.NewUserService(repo, verificationService)
	listingService := services.NewListingService(repo, gate, helpers.NewCloudinaryImages(cld))
	favouriteService := services.NewFavouriteService(repo, repo, gate)

	return &Container{
		Logger:              logger,
		Config:              cfg,
		MongoDBClient:       mongoClient,
		Cloudinary:          cld,
		Repo:                repo,
		UserService:         userService,
		VerificationService: verificationService,
		ListingService:      listingService,
		FavouriteService:    favouriteService,
	}
}
