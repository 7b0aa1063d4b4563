package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ActivationMailTemplate = "activation-mail"
	ActivationMailSubject  = "Activate your account!"
)

type RegisterAccountMessage struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	OnResponse  func(r *RegisterAccountResponse) `json:"-"`
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountResponse carries the token the caller must send back
// together with the emailed code. The code itself is never returned.
type RegisterAccountResponse struct {
	ActivationToken string `json:"activation_token"`
}

// RegisterAccountHandler runs the first step of sign up. No account is
// stored; the pending account travels inside the activation token.
type RegisterAccountHandler struct {
	directory AccountDirectory
	codec     *ActivationTokenCodec
	sender    NotificationSender
	opts      handlerOptions
}

var _ command.Commander[RegisterAccountMessage] = (*RegisterAccountHandler)(nil)

func NewRegisterAccountHandler(
	directory AccountDirectory,
	codec *ActivationTokenCodec,
	sender NotificationSender,
	opts ...HandlerOption,
) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		directory: directory,
		codec:     codec,
		sender:    sender,
		opts:      newHandlerOptions(opts),
	}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	res, err := h.Handle(ctx, event)
	if err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(res)
	}

	return nil
}

// Handle registers the pending account and returns its activation token
func (h *RegisterAccountHandler) Handle(ctx context.Context, event RegisterAccountMessage) (*RegisterAccountResponse, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) (*RegisterAccountResponse, error) {
	ctx, span := h.opts.tracer.Start(ctx, "accounts.register")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, h.opts.timeout)
	defer cancel()

	span.SetAttributes(spanEmail(event.Email))

	res, err := h.register(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")
		return nil, err
	}

	return res, nil
}

func (h *RegisterAccountHandler) register(ctx context.Context, event RegisterAccountMessage) (*RegisterAccountResponse, error) {
	// values are kept as submitted, only surrounding blanks are dropped
	event.Name = strings.TrimSpace(event.Name)
	event.Email = strings.TrimSpace(event.Email)
	event.PhoneNumber = strings.TrimSpace(event.PhoneNumber)

	if err := event.ValidateInRegion(h.opts.region); err != nil {
		return nil, err
	}

	email := event.Email
	phone := event.PhoneNumber

	byEmail, err := h.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account by email")
	}

	byPhone, err := h.directory.FindByPhone(ctx, phone)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account by phone number")
	}

	// phone wins when both are taken
	if byPhone != nil {
		return nil, ErrPhoneAlreadyExists
	}

	if byEmail != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := h.opts.hasher.HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	pending := PendingUser{
		Name:         event.Name,
		Email:        email,
		PasswordHash: hash,
		PhoneNumber:  phone,
	}

	token, err := h.codec.Encode(pending)
	if err != nil {
		return nil, err
	}

	err = h.sender.Send(ctx, Notification{
		To:       email,
		Subject:  ActivationMailSubject,
		Template: ActivationMailTemplate,
		Context: map[string]any{
			"name":           pending.Name,
			"activationCode": token.Code,
		},
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to send activation notification")
	}

	h.opts.logger.Info("activation requested", "email", email)

	recordActivity(ctx, h.opts.activity, h.opts.logger, ActivityEvent{
		EventType: ActivityEventRegistrationRequested,
		Email:     email,
		Metadata: map[string]any{
			"expires_at": token.ExpiresAt,
		},
	})

	return &RegisterAccountResponse{ActivationToken: token.Token}, nil
}

func spanEmail(email string) attribute.KeyValue {
	return attribute.String("account.email", strings.TrimSpace(email))
}
