package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoginRequest holds the credentials of a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResponseError is the structured failure of a login attempt
type ResponseError struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
}

// LoginResponse is the outcome of a login attempt. On failure only
// Error is set, with the same content regardless of what failed.
type LoginResponse struct {
	Account      *Account       `json:"account"`
	AccessToken  *string        `json:"access_token"`
	RefreshToken *string        `json:"refresh_token"`
	Error        *ResponseError `json:"error,omitempty"`
}

// Succeeded reports whether tokens were issued
func (r *LoginResponse) Succeeded() bool {
	return r != nil && r.Error == nil && r.Account != nil
}

func incorrectCredentials() *LoginResponse {
	return &LoginResponse{
		Error: &ResponseError{
			Message:  IncorrectCredentialsMessage,
			TextCode: TextCodeInvalidCreds,
		},
	}
}

type Auther struct {
	directory    AccountDirectory
	tokenService TokenService
	hasher       PasswordAuthenticator
	logger       Logger
	activitySink ActivitySink
	tracer       trace.Tracer
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(directory AccountDirectory, cfg Config) *Auther {
	return &Auther{
		directory:    directory,
		tokenService: NewTokenService(cfg),
		hasher:       BcryptHasher{},
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		tracer:       otel.Tracer(tracerName),
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger == nil {
		return s
	}
	s.logger = logger
	return s
}

// WithTokenService replaces the token service built from Config
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithPasswordHasher replaces the bcrypt hasher
func (s *Auther) WithPasswordHasher(hasher PasswordAuthenticator) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTracer sets the tracer used for login and refresh spans
func (s *Auther) WithTracer(tracer trace.Tracer) *Auther {
	if tracer != nil {
		s.tracer = tracer
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login checks the credentials and issues a session token pair.
// A missing account and a wrong password give the same response and
// no error; errors are reserved for failures of the directory or the
// token service.
func (s *Auther) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.login")
	defer span.End()

	email := strings.TrimSpace(req.Email)
	span.SetAttributes(spanEmail(email))

	account, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Login find account error", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "directory lookup failed")
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if account == nil || s.hasher.ComparePasswordAndHash(req.Password, account.PasswordHash) != nil {
		reason := "password mismatch"
		if account == nil {
			reason = "account not found"
		}
		s.logger.Debug("Login rejected", "email", email, "reason", reason)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", email, map[string]any{
			"reason": reason,
		})
		return incorrectCredentials(), nil
	}

	pair, err := s.tokenService.Issue(ctx, account)
	if err != nil {
		s.logger.Error("Login issue tokens error", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, account.ID.String(), account.Email, nil)

	return &LoginResponse{
		Account:      account,
		AccessToken:  &pair.AccessToken,
		RefreshToken: &pair.RefreshToken,
	}, nil
}

// Refresh exchanges a refresh token for a new token pair. The account
// must still exist.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*SessionTokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.refresh")
	defer span.End()

	claims, err := RefreshTokenValidator(s.tokenService).Validate(strings.TrimSpace(refreshToken))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	account, err := s.accountFromClaims(ctx, claims)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		return nil, err
	}

	pair, err := s.tokenService.Issue(ctx, account)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventTokenRefreshed, account.ID.String(), account.Email, nil)

	return pair, nil
}

// ResolveSession validates an access token and loads its account. The
// refresh token, when given, is only checked to belong to the same
// account. The result is a fresh SessionContext for one request.
func (s *Auther) ResolveSession(ctx context.Context, accessToken, refreshToken string) (*SessionContext, error) {
	claims, err := AccessTokenValidator(s.tokenService).Validate(accessToken)
	if err != nil {
		return nil, err
	}

	if refreshToken != "" {
		refreshClaims, err := RefreshTokenValidator(s.tokenService).Validate(refreshToken)
		if err != nil {
			return nil, err
		}
		if refreshClaims.UserID() != claims.UserID() {
			s.logger.Warn("session tokens belong to different accounts",
				"access", claims.UserID(),
				"refresh", refreshClaims.UserID(),
			)
			return nil, ErrTokenMalformed
		}
	}

	account, err := s.accountFromClaims(ctx, claims)
	if err != nil {
		return nil, err
	}

	return &SessionContext{
		Account:      account,
		Claims:       claims,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ListAccounts returns every account to an authenticated caller
func (s *Auther) ListAccounts(ctx context.Context) ([]*Account, error) {
	if session, ok := SessionFromContext(ctx); !ok || !session.IsAuthenticated() {
		return nil, ErrUnableToFindSession
	}

	accounts, err := s.directory.List(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list accounts")
	}

	return accounts, nil
}

// Logout clears the session in ctx and records the event
func (s *Auther) Logout(ctx context.Context) LogoutResponse {
	if session, ok := SessionFromContext(ctx); ok && session.IsAuthenticated() {
		s.emitAuthEvent(ctx, ActivityEventLogout, session.Account.ID.String(), session.Account.Email, nil)
	}
	return Logout(ctx)
}

func (s *Auther) accountFromClaims(ctx context.Context, claims AuthClaims) (*Account, error) {
	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		s.logger.Debug("token subject is not an account id", "subject", claims.UserID())
		return nil, ErrTokenMalformed
	}

	account, err := s.directory.FindByID(ctx, id)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if account == nil {
		return nil, ErrAccountNotFound
	}

	return account, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID, email string, metadata map[string]any) {
	recordActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Metadata:  metadata,
	})
}
