package main

import (
	"log/slog"
	"os"

	auth "github.com/goliatone/go-accounts"
)

type slogLogger struct {
	l *slog.Logger
}

var _ auth.Logger = (*slogLogger)(nil)

func newLogger(debug bool) *slogLogger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &slogLogger{l: slog.New(h)}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) *slogLogger {
	return &slogLogger{l: s.l.With(args...)}
}
