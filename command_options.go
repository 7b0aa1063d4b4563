package auth

import (
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCommandTimeout bounds a single command execution
const DefaultCommandTimeout = 10 * time.Second

const tracerName = "github.com/goliatone/go-accounts"

type handlerOptions struct {
	logger   Logger
	activity ActivitySink
	hasher   PasswordAuthenticator
	timeout  time.Duration
	tracer   trace.Tracer
	region   string
}

// HandlerOption configures the account command handlers
type HandlerOption func(*handlerOptions)

// WithHandlerLogger sets the handler logger
func WithHandlerLogger(logger Logger) HandlerOption {
	return func(o *handlerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHandlerActivitySink sets where audit events go
func WithHandlerActivitySink(sink ActivitySink) HandlerOption {
	return func(o *handlerOptions) {
		o.activity = normalizeActivitySink(sink)
	}
}

// WithPasswordHasher replaces the bcrypt hasher
func WithPasswordHasher(hasher PasswordAuthenticator) HandlerOption {
	return func(o *handlerOptions) {
		if hasher != nil {
			o.hasher = hasher
		}
	}
}

// WithHandlerTimeout overrides DefaultCommandTimeout
func WithHandlerTimeout(timeout time.Duration) HandlerOption {
	return func(o *handlerOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithTracer sets the tracer used for command spans
func WithTracer(tracer trace.Tracer) HandlerOption {
	return func(o *handlerOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithPhoneRegion sets the region used to read phone numbers written
// without a country code, DefaultPhoneRegion otherwise
func WithPhoneRegion(region string) HandlerOption {
	return func(o *handlerOptions) {
		if region = strings.ToUpper(strings.TrimSpace(region)); region != "" {
			o.region = region
		}
	}
}

func newHandlerOptions(opts []HandlerOption) handlerOptions {
	o := handlerOptions{
		logger:   defLogger{},
		activity: noopActivitySink{},
		hasher:   BcryptHasher{},
		timeout:  DefaultCommandTimeout,
		tracer:   otel.Tracer(tracerName),
		region:   DefaultPhoneRegion,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
