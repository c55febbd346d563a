package notify

import (
	"context"
	"fmt"

	"github.com/sell-it/server/internal/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioSMS struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMS(cfg *config.Config) *TwilioSMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioSMS{
		client: client,
		from:   cfg.TwilioFromNumber,
	}
}

func (t *TwilioSMS) SendVerificationCode(ctx context.Context, to, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(fmt.Sprintf("Your Sell-It verification code is %s. It expires in 10 minutes.", code))

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send verification SMS: %v", err)
	}
	return nil
}
