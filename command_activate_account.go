package auth

import (
	"context"

	"github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"go.opentelemetry.io/otel/codes"
)

type ActivateAccountMessage struct {
	ActivationToken string                             `json:"activation_token"`
	ActivationCode  string                             `json:"activation_code"`
	OnResponse      func(r *ActivateAccountResponse) `json:"-"`
}

func (e ActivateAccountMessage) Type() string { return "account.activate" }

type ActivateAccountResponse struct {
	Account *Account `json:"account"`
}

// ActivateAccountHandler turns a pending account carried by an
// activation token into a stored account.
type ActivateAccountHandler struct {
	directory AccountDirectory
	codec     *ActivationTokenCodec
	opts      handlerOptions
}

var _ command.Commander[ActivateAccountMessage] = (*ActivateAccountHandler)(nil)

func NewActivateAccountHandler(directory AccountDirectory, codec *ActivationTokenCodec, opts ...HandlerOption) *ActivateAccountHandler {
	return &ActivateAccountHandler{
		directory: directory,
		codec:     codec,
		opts:      newHandlerOptions(opts),
	}
}

func (h *ActivateAccountHandler) Execute(ctx context.Context, event ActivateAccountMessage) error {
	res, err := h.Handle(ctx, event)
	if err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(res)
	}

	return nil
}

// Handle verifies token and code and creates the account
func (h *ActivateAccountHandler) Handle(ctx context.Context, event ActivateAccountMessage) (*ActivateAccountResponse, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during account activation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateAccountHandler) execute(ctx context.Context, event ActivateAccountMessage) (*ActivateAccountResponse, error) {
	ctx, span := h.opts.tracer.Start(ctx, "accounts.activate")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, h.opts.timeout)
	defer cancel()

	account, err := h.activate(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "activation failed")
		return nil, err
	}

	span.SetAttributes(spanEmail(account.Email))

	return &ActivateAccountResponse{Account: account}, nil
}

func (h *ActivateAccountHandler) activate(ctx context.Context, event ActivateAccountMessage) (*Account, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	claims, err := h.codec.Decode(event.ActivationToken)
	if err != nil {
		return nil, err
	}

	if claims.ActivationCode != event.ActivationCode {
		h.opts.logger.Debug("activation code mismatch", "email", claims.User.Email)
		return nil, ErrCodeMismatch
	}

	// only email is checked again here, a phone number taken since
	// registration is caught by the unique constraint on create
	existing, err := h.directory.FindByEmail(ctx, claims.User.Email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account by email")
	}

	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	account, err := h.directory.Create(ctx, claims.User.NewAccount())
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create account")
	}

	h.opts.logger.Info("account activated", "email", account.Email, "id", account.ID)

	recordActivity(ctx, h.opts.activity, h.opts.logger, ActivityEvent{
		EventType: ActivityEventAccountActivated,
		UserID:    account.ID.String(),
		Email:     account.Email,
	})

	return account, nil
}
