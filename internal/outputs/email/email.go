// Package email sends composed messages.
package email

import "context"

// ContentType of a message body.
type ContentType string

const (
	TextPlain ContentType = "text/plain"
	TextHTML  ContentType = "text/html"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	// Type defaults to TextPlain.
	Type ContentType
}

type Sender interface {
	Send(ctx context.Context, message Message) error
}
