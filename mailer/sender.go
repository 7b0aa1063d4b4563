package mailer

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	auth "github.com/goliatone/go-accounts"
)

// Message is a rendered email ready for delivery
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Transport delivers rendered messages
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// TransportFunc adapts a function to Transport
type TransportFunc func(ctx context.Context, msg Message) error

func (f TransportFunc) Deliver(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Sender renders a notification template and hands the result to a
// Transport. It implements auth.NotificationSender.
type Sender struct {
	from      string
	renderer  Renderer
	transport Transport
	logger    auth.Logger
}

var _ auth.NotificationSender = (*Sender)(nil)

type SenderOption func(*Sender)

// WithSenderLogger sets the sender logger
func WithSenderLogger(logger auth.Logger) SenderOption {
	return func(s *Sender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSender requires both a renderer and a transport
func NewSender(from string, renderer Renderer, transport Transport, opts ...SenderOption) (*Sender, error) {
	if renderer == nil {
		return nil, goerrors.New("mail renderer is required", goerrors.CategoryInternal)
	}
	if transport == nil {
		return nil, goerrors.New("mail transport is required", goerrors.CategoryInternal)
	}

	s := &Sender{
		from:      from,
		renderer:  renderer,
		transport: transport,
		logger:    auth.NoopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *Sender) Send(ctx context.Context, n auth.Notification) error {
	if strings.TrimSpace(n.To) == "" {
		return goerrors.New("notification recipient is required", goerrors.CategoryBadInput)
	}

	body, err := s.renderer.Render(n.Template, n.Context)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render notification template").
			WithMetadata(map[string]any{"template": n.Template})
	}

	err = s.transport.Deliver(ctx, Message{
		From:    s.from,
		To:      n.To,
		Subject: n.Subject,
		HTML:    body,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver notification")
	}

	s.logger.Info("Email sent to", "to", n.To, "template", n.Template)

	return nil
}

// LogSender only logs notifications. The activation code is part of the
// logged context, so it is meant for local development.
type LogSender struct {
	logger auth.Logger
}

var _ auth.NotificationSender = LogSender{}

func NewLogSender(logger auth.Logger) LogSender {
	if logger == nil {
		logger = auth.NoopLogger{}
	}
	return LogSender{logger: logger}
}

func (s LogSender) Send(_ context.Context, n auth.Notification) error {
	args := []any{"to", n.To, "subject", n.Subject, "template", n.Template}
	for k, v := range n.Context {
		args = append(args, k, v)
	}
	s.logger.Info("Email sent to", args...)
	return nil
}
