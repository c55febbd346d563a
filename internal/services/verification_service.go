package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/sell-it/server/internal/helpers"
	"github.com/sell-it/server/internal/models"
	"github.com/sell-it/server/internal/notify"
)

var phoneCodeRe = regexp.MustCompile(`^\d{6}$`)

// VerificationService issues and redeems the single-use proofs of channel
// control: an emailed token and an SMS'd 6-digit code. Only hashes are
// stored; redemption happens as one conditional update in the repo.
type VerificationService struct {
	userRepo models.UserRepo
	mailer   notify.Mailer
	sms      notify.SMSSender
	logger   *slog.Logger

	emailTokenTTL time.Duration
	phoneCodeTTL  time.Duration
}

func NewVerificationService(
	userRepo models.UserRepo,
	mailer notify.Mailer,
	sms notify.SMSSender,
	logger *slog.Logger,
	emailTokenTTL, phoneCodeTTL time.Duration,
) *VerificationService {
	return &VerificationService{
		userRepo:      userRepo,
		mailer:        mailer,
		sms:           sms,
		logger:        logger,
		emailTokenTTL: emailTokenTTL,
		phoneCodeTTL:  phoneCodeTTL,
	}
}

// IssueEmailToken stores a fresh token hash for the user and mails the
// plaintext. The send runs as an awaited task; delivery failure propagates.
func (vs *VerificationService) IssueEmailToken(ctx context.Context, user *models.User) error {
	token, err := helpers.GenerateEmailToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(vs.emailTokenTTL)
	if err := vs.userRepo.SetEmailToken(ctx, user.ID, helpers.HashVerificationSecret(token), expires); err != nil {
		return err
	}

	result := notify.SendAsync(func() error {
		return vs.mailer.SendVerificationEmail(ctx, user.Email, token)
	})
	return <-result
}

// SendInitialEmail is the registration-time variant: the account is already
// created, so a delivery failure is logged and swallowed rather than failing
// the signup. The user can request a resend.
func (vs *VerificationService) SendInitialEmail(ctx context.Context, user *models.User) {
	if err := vs.IssueEmailToken(ctx, user); err != nil {
		vs.logger.Error("Failed to send verification email",
			"user_id", user.ID.Hex(),
			"error", err,
		)
	}
}

// ResendEmail reissues a token for an unverified account. NotFound and
// AlreadyVerified are returned to the caller, but the public handler folds
// both into a generic success so the endpoint cannot be used to probe which
// emails exist.
func (vs *VerificationService) ResendEmail(ctx context.Context, email string) error {
	user, err := vs.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return models.ErrAlreadyVerified
	}
	return vs.IssueEmailToken(ctx, user)
}

// VerifyEmail redeems a token. The repo clears the stored hash both on
// success and on expiry, so a second attempt with the same token always fails
// with InvalidToken.
func (vs *VerificationService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.ErrInvalidToken
	}
	return vs.userRepo.RedeemEmailToken(ctx, helpers.HashVerificationSecret(token), time.Now())
}

// RequestPhoneCode generates and delivers a code for the caller's own phone
// number. Unlike email resend there is no enumeration concern: the endpoint
// is authenticated and only ever acts on the session's account.
func (vs *VerificationService) RequestPhoneCode(ctx context.Context, p *Principal) error {
	if p == nil {
		return models.ErrUnauthenticated
	}

	user, err := vs.userRepo.GetUserByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if user.PhoneVerified {
		return models.ErrAlreadyVerified
	}
	if user.Phone == "" {
		return fmt.Errorf("no phone number on account: %w", models.ErrInvalidIdentifier)
	}

	code, err := helpers.GeneratePhoneCode()
	if err != nil {
		return err
	}

	expires := time.Now().Add(vs.phoneCodeTTL)
	if err := vs.userRepo.SetPhoneCode(ctx, user.ID, helpers.HashVerificationSecret(code), expires); err != nil {
		return err
	}

	result := notify.SendAsync(func() error {
		return vs.sms.SendVerificationCode(ctx, user.Phone, code)
	})
	return <-result
}

func (vs *VerificationService) VerifyPhone(ctx context.Context, p *Principal, code string) (*models.User, error) {
	if p == nil {
		return nil, models.ErrUnauthenticated
	}
	if !phoneCodeRe.MatchString(code) {
		return nil, models.ErrInvalidCode
	}

	user, err := vs.userRepo.RedeemPhoneCode(ctx, p.ID, helpers.HashVerificationSecret(code), time.Now())
	if err != nil {
		if errors.Is(err, models.ErrInvalidCode) {
			vs.logger.Info("Phone verification attempt with wrong code", "user_id", p.ID.Hex())
		}
		return nil, err
	}
	return user, nil
}
