package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-accounts"
)

type recordingLogger struct {
	auth.NoopLogger
	infos []string
	warns []string
}

func (l *recordingLogger) Info(msg string, _ ...any) { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any) { l.warns = append(l.warns, msg) }

func TestActivitySinkFuncNil(t *testing.T) {
	var sink auth.ActivitySinkFunc
	assert.NoError(t, sink.Record(context.Background(), auth.ActivityEvent{}))
}

func TestLoggerActivitySink(t *testing.T) {
	logger := &recordingLogger{}
	sink := auth.LoggerActivitySink(logger)

	require.NoError(t, sink.Record(context.Background(), auth.ActivityEvent{
		EventType: auth.ActivityEventLoginSuccess,
		Email:     "ana@x.com",
	}))
	assert.Equal(t, []string{"activity"}, logger.infos)
}

func TestFailingSinkDoesNotFailTheOperation(t *testing.T) {
	f := newAuthFixture(t)
	logger := &recordingLogger{}

	var got auth.ActivityEvent
	f.auther.WithLogger(logger).WithActivitySink(auth.ActivitySinkFunc(func(_ context.Context, e auth.ActivityEvent) error {
		got = e
		return errors.New("sink offline")
	}))

	res, err := f.auther.Login(context.Background(), auth.LoginRequest{Email: "ana@x.com", Password: "password1"})
	require.NoError(t, err)
	assert.True(t, res.Succeeded())

	assert.Equal(t, auth.ActivityEventLoginSuccess, got.EventType)
	assert.Equal(t, f.account.ID.String(), got.UserID)
	assert.False(t, got.OccurredAt.IsZero())
	assert.NotNil(t, got.Metadata)
	assert.Equal(t, []string{"activity sink record error"}, logger.warns)
}
