// Package email provides outbound mail delivery for password resets and
// announcement broadcasts.
package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send one email.
type SendRequest struct {
	To      []string // recipient addresses
	From    string   // sender address, e.g. "Palestra <noreply@palestra.example>"
	Subject string
	HTML    string // rendered HTML body
	ReplyTo string
}

// SendResult contains the response from the provider.
type SendResult struct {
	MessageID string    // provider message ID for tracking
	SentAt    time.Time // when the send was accepted
}

// Sender is the interface for delivering emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
