package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// messageCreator is the part of the Twilio API used here; *twilioApi.ApiService implements it.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioNotifier sends an SMS to question authors that have a phone number in their profile.
type TwilioNotifier struct {
	api     messageCreator
	from    string
	baseURL string
	logger  *zap.Logger
}

func NewTwilioNotifier(accountSID, authToken, from, baseURL string, logger *zap.Logger) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newTwilioNotifier(client.Api, from, baseURL, logger)
}

func newTwilioNotifier(api messageCreator, from, baseURL string, logger *zap.Logger) *TwilioNotifier {
	return &TwilioNotifier{api: api, from: from, baseURL: baseURL, logger: logger.Named("twilio")}
}

func (n *TwilioNotifier) NotifyNewAnswer(ctx context.Context, event NewAnswerEvent) error {
	if event.RecipientPhone == "" {
		n.logger.Debug("Recipient has no phone, skipping SMS",
			zap.Uint("question_id", event.QuestionID),
			zap.Uint("recipient_id", event.RecipientID),
		)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(event.RecipientPhone)
	params.SetFrom(n.from)
	params.SetBody(messageBody(n.baseURL, event))

	msg, err := n.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	n.logger.Info("SMS sent",
		zap.Uint("question_id", event.QuestionID),
		zap.Uint("recipient_id", event.RecipientID),
		zap.String("sid", sid),
	)
	return nil
}

func messageBody(baseURL string, event NewAnswerEvent) string {
	return fmt.Sprintf("%s answered your question %q: %s",
		event.AnswerAuthor, event.QuestionCaption, QuestionURL(baseURL, event.QuestionID))
}
