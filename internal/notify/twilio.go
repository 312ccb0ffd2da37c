package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrNoSupplierPhone = errors.New("supplier has no phone number")

// messageCreator is the part of the Twilio REST client used here.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier texts suppliers through Twilio.
type SMSNotifier struct {
	api  messageCreator
	from string
}

func NewSMSNotifier(accountSID, authToken, from string) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSNotifier{api: client.Api, from: from}
}

func (s *SMSNotifier) Channel() string { return "sms" }

func (s *SMSNotifier) Notify(ctx context.Context, n Notice) error {
	to := strings.TrimSpace(n.SupplierPhone)
	if to == "" {
		return ErrNoSupplierPhone
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(n.Message())

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("Reorder SMS for product %d sent, sid %s", n.ProductID, *resp.Sid)
	}
	return nil
}

// New picks the SMS notifier when Twilio credentials are present.
func New(accountSID, authToken, from string) SupplierNotifier {
	if accountSID == "" || authToken == "" || from == "" {
		return LogNotifier{}
	}
	return NewSMSNotifier(accountSID, authToken, from)
}
