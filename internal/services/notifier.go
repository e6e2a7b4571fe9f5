package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier delivers an OTP code to an identity key. Delivery failure
// never invalidates the issued challenge; the OTP manager just reports
// it to the caller.
type Notifier interface {
	Send(key, code, purpose string) error
}

// TwilioNotifier sends OTP codes by SMS via Twilio.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioNotifier creates a Twilio-backed notifier.
func NewTwilioNotifier(accountSID, authToken, from string) (*TwilioNotifier, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioNotifier{client: client, from: from}, nil
}

// Send delivers the code by SMS. Email keys are not deliverable over
// SMS and fall through with an error; the challenge stays valid either
// way.
func (t *TwilioNotifier) Send(key, code, purpose string) error {
	if strings.Contains(key, "@") {
		return fmt.Errorf("cannot deliver to email address %s via SMS", key)
	}

	body := fmt.Sprintf("Your Chla Chla OTP is: %s. Valid for 10 minutes. Do not share with anyone.", code)

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(key)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send OTP SMS: %v", err)
		return err
	}

	log.Printf("✅ OTP SMS sent! SID: %s", *resp.Sid)
	return nil
}

// LogNotifier writes the code to the log instead of sending it.
// Used when Twilio credentials are absent (local development).
type LogNotifier struct{}

func (LogNotifier) Send(key, code, purpose string) error {
	log.Printf("📱 OTP for %s (%s): %s", key, purpose, code)
	return nil
}
