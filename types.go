package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logger takes a message followed by key/value pairs
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds token options
type Config interface {
	GetIssuer() string
	GetActivationSecret() string
	GetActivationTTL() time.Duration
	GetAccessSecret() string
	GetAccessTTL() time.Duration
	GetRefreshSecret() string
	GetRefreshTTL() time.Duration
}

// AccountDirectory is the durable store of activated accounts.
// Finders return (nil, nil) when nothing matches. Create must
// enforce email and phone uniqueness and report a clash with
// ErrEmailAlreadyExists or ErrPhoneAlreadyExists.
type AccountDirectory interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByPhone(ctx context.Context, phone string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// List returns every account, oldest first
	List(ctx context.Context) ([]*Account, error)
	Create(ctx context.Context, account *Account) (*Account, error)
}

// Notification is an out of band message for a user
type Notification struct {
	To       string
	Subject  string
	Template string
	Context  map[string]any
}

// NotificationSender delivers notifications. Send returns once the
// message has been handed off.
type NotificationSender interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationSenderFunc adapts a function to NotificationSender
type NotificationSenderFunc func(ctx context.Context, n Notification) error

func (f NotificationSenderFunc) Send(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println("[ERR] ACCOUNTS " + line(msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println("[WRN] ACCOUNTS " + line(msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println("[INF] ACCOUNTS " + line(msg, args))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println("[DBG] ACCOUNTS " + line(msg, args))
}

// line renders key/value pairs after the message
func line(msg string, args []any) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(msg, "\n"))
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	return b.String()
}

// NoopLogger discards everything
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...any) {}
func (NoopLogger) Info(string, ...any)  {}
func (NoopLogger) Warn(string, ...any)  {}
func (NoopLogger) Error(string, ...any) {}
