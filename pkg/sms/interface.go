package sms

import "context"

// Message types. Carriers route transactional traffic ahead of promotional.
const (
	TypeTransactional = "transactional"
	TypePromotional   = "promotional"
)

type Provider interface {
	Send(ctx context.Context, message *Message) (*Result, error)
}

type Message struct {
	To   string `json:"to"`
	Body string `json:"body"`
	Type string `json:"type"`
}

type Result struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}
