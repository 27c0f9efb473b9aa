package mock

import (
	"context"

	"github.com/bakkerme/feedboard/internal/outputs/email"
)

// Sender records sent messages instead of delivering them.
type Sender struct {
	Messages []email.Message
	Err      error
}

func (s *Sender) Send(ctx context.Context, message email.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Err != nil {
		return s.Err
	}
	s.Messages = append(s.Messages, message)
	return nil
}
