// Package mailer sends transactional email.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ErrNoRecipients is returned for a message without a To address.
var ErrNoRecipients = errors.New("email has no recipients")

// Message is one outgoing email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Result describes an accepted message.
type Result struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// ResendSender sends through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendSender creates a sender with a default from address.
func NewResendSender(apiKey, from string, logger *zap.Logger) *ResendSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResendSender{client: resend.NewClient(apiKey), from: from, logger: logger}
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	if len(msg.To) == 0 {
		return Result{}, ErrNoRecipients
	}
	from := msg.From
	if from == "" {
		from = s.from
	}
	params := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("resend send failed", zap.Strings("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return Result{}, fmt.Errorf("resend send failed: %w", err)
	}
	s.logger.Info("email sent", zap.String("message_id", sent.Id), zap.Strings("to", msg.To))
	return Result{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// LogSender writes messages to the log instead of sending them. It stands in
// when no API key is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) (Result, error) {
	s.logger.Info("email not sent, no provider configured",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return Result{SentAt: time.Now()}, nil
}
