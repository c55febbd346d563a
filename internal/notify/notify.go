// Package notify holds the outbound delivery collaborators: verification mail
// over SMTP and verification codes over SMS. Both are plain interfaces so the
// services can be tested against fakes.
package notify

import "context"

type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
}

type SMSSender interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

// SendAsync runs a delivery as a task and hands back its result on a channel.
// The caller decides explicitly what a failure means; nothing is
// fire-and-forget unless the caller chooses to drop the channel.
func SendAsync(send func() error) <-chan error {
	result := make(chan error, 1)
	go func() {
		result <- send()
	}()
	return result
}
