package notify

import (
	"context"
	"fmt"

	"github.com/sell-it/server/internal/config"
	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Verify your Sell-It account")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Welcome to Sell-It!\n\nUse the token below to verify your email address. It expires in 24 hours.\n\n%s\n\nIf you did not sign up, ignore this message.",
		token,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send verification email: %v", err)
	}
	return nil
}
