package sms

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioProvider struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewTwilioProvider(accountSID, authToken, fromNumber string) *TwilioProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioProvider{
		client:     client,
		fromNumber: fromNumber,
	}
}

func (t *TwilioProvider) Send(_ context.Context, message *Message) (*Result, error) {
	params := &api.CreateMessageParams{}
	params.SetTo(message.To)
	params.SetFrom(t.fromNumber)
	params.SetBody(message.Body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return nil, errors.Wrap(err, "twilio create message")
	}

	result := &Result{Status: "sent"}
	if resp.Sid != nil {
		result.MessageID = *resp.Sid
	}
	if resp.Status != nil {
		result.Status = string(*resp.Status)
	}
	return result, nil
}
