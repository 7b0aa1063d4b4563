package mailer

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	auth "github.com/goliatone/go-accounts"
)

type recordingLogger struct {
	auth.NoopLogger
	infos []string
}

func (l *recordingLogger) Info(msg string, args ...any) {
	l.infos = append(l.infos, msg)
}

func TestDefaultRendererActivationMail(t *testing.T) {
	r, err := NewDefaultRenderer()
	require.NoError(t, err)

	body, err := r.Render(auth.ActivationMailTemplate, map[string]any{
		"name":           "Ana",
		"activationCode": "4821",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Hi Ana,")
	assert.Contains(t, body, "4821")
}

func TestRendererEscapesContext(t *testing.T) {
	r, err := NewDefaultRenderer()
	require.NoError(t, err)

	body, err := r.Render(auth.ActivationMailTemplate, map[string]any{
		"name":           "<script>",
		"activationCode": "1000",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestRendererUnknownTemplate(t *testing.T) {
	r, err := NewDjangoRenderer(fstest.MapFS{
		"hello.html": &fstest.MapFile{Data: []byte("hello {{ name }}")},
	})
	require.NoError(t, err)

	body, err := r.Render("hello", map[string]any{"name": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "hello Ana", body)

	_, err = r.Render("missing", nil)
	assert.Error(t, err)
}

func TestSenderRendersAndDelivers(t *testing.T) {
	r, err := NewDefaultRenderer()
	require.NoError(t, err)

	var delivered []Message
	transport := TransportFunc(func(ctx context.Context, msg Message) error {
		delivered = append(delivered, msg)
		return nil
	})

	logger := &recordingLogger{}
	s, err := NewSender("no-reply@x.com", r, transport, WithSenderLogger(logger))
	require.NoError(t, err)

	err = s.Send(context.Background(), auth.Notification{
		To:       "ana@x.com",
		Subject:  auth.ActivationMailSubject,
		Template: auth.ActivationMailTemplate,
		Context:  map[string]any{"name": "Ana", "activationCode": "4821"},
	})
	require.NoError(t, err)

	require.Len(t, delivered, 1)
	assert.Equal(t, "no-reply@x.com", delivered[0].From)
	assert.Equal(t, "ana@x.com", delivered[0].To)
	assert.Equal(t, "Activate your account!", delivered[0].Subject)
	assert.Contains(t, delivered[0].HTML, "4821")
	assert.Equal(t, []string{"Email sent to"}, logger.infos)
}

func TestSenderSurfacesTransportFailure(t *testing.T) {
	r, err := NewDefaultRenderer()
	require.NoError(t, err)

	s, err := NewSender("no-reply@x.com", r, TransportFunc(func(ctx context.Context, msg Message) error {
		return errors.New("relay down")
	}))
	require.NoError(t, err)

	err = s.Send(context.Background(), auth.Notification{
		To:       "ana@x.com",
		Template: auth.ActivationMailTemplate,
		Context:  map[string]any{"name": "Ana", "activationCode": "4821"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to deliver notification")
}

func TestSenderRequiresRecipient(t *testing.T) {
	r, err := NewDefaultRenderer()
	require.NoError(t, err)

	s, err := NewSender("no-reply@x.com", r, TransportFunc(func(context.Context, Message) error { return nil }))
	require.NoError(t, err)

	err = s.Send(context.Background(), auth.Notification{})
	assert.Error(t, err)
}

func TestNewSenderRejectsMissingDependencies(t *testing.T) {
	r, err := NewDefaultRenderer()
	require.NoError(t, err)
	transport := TransportFunc(func(context.Context, Message) error { return nil })

	s, err := NewSender("no-reply@x.com", nil, transport)
	assert.Error(t, err)
	assert.Nil(t, s)

	s, err = NewSender("no-reply@x.com", r, nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestLogSender(t *testing.T) {
	logger := &recordingLogger{}
	s := NewLogSender(logger)

	err := s.Send(context.Background(), auth.Notification{To: "ana@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Email sent to"}, logger.infos)
}

func TestBuildMsg(t *testing.T) {
	m, err := buildMsg(Message{
		From:    "no-reply@x.com",
		To:      "ana@x.com",
		Subject: "Activate your account!",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Activate your account!"}, m.GetGenHeader(mail.HeaderSubject))

	_, err = buildMsg(Message{From: "not an address", To: "ana@x.com"})
	assert.Error(t, err)
}

func TestNewSMTPTransport(t *testing.T) {
	tr, err := NewSMTPTransport(SMTPConfig{
		Host:     "localhost",
		Port:     2525,
		Username: "user",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.NotNil(t, tr)
}
