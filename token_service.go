package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

const (
	// DefaultAccessTTL is used when the configuration has no access TTL
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is used when the configuration has no refresh TTL
	DefaultRefreshTTL = 7 * 24 * time.Hour

	accessAudience  = "accounts:access"
	refreshAudience = "accounts:refresh"
)

// TokenService mints and validates session tokens
type TokenService interface {
	Issue(ctx context.Context, account *Account) (*SessionTokenPair, error)
	ValidateAccess(token string) (*SessionClaims, error)
	ValidateRefresh(token string) (*SessionClaims, error)
}

type tokenSigner struct {
	secret   []byte
	ttl      time.Duration
	audience string
	kind     TokenKind
}

// TokenServiceImpl implements the TokenService interface. Access and
// refresh tokens use separate secrets and audiences.
type TokenServiceImpl struct {
	access  tokenSigner
	refresh tokenSigner
	issuer  string
	now     func() time.Time
	logger  Logger
}

// TokenServiceOption configures a TokenServiceImpl
type TokenServiceOption func(*TokenServiceImpl)

// WithTokenClock overrides the clock used to stamp and verify tokens
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithTokenLogger sets the token service logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, opts ...TokenServiceOption) TokenService {
	accessTTL := cfg.GetAccessTTL()
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}

	refreshTTL := cfg.GetRefreshTTL()
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	ts := &TokenServiceImpl{
		access: tokenSigner{
			secret:   []byte(cfg.GetAccessSecret()),
			ttl:      accessTTL,
			audience: accessAudience,
			kind:     TokenKindAccess,
		},
		refresh: tokenSigner{
			secret:   []byte(cfg.GetRefreshSecret()),
			ttl:      refreshTTL,
			audience: refreshAudience,
			kind:     TokenKindRefresh,
		},
		issuer: cfg.GetIssuer(),
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// Issue signs an access and a refresh token for account and attaches
// them to the SessionContext carried by ctx, if any.
func (ts *TokenServiceImpl) Issue(ctx context.Context, account *Account) (*SessionTokenPair, error) {
	if account == nil {
		return nil, goerrors.New("account is required", goerrors.CategoryBadInput)
	}

	now := ts.now()

	access, accessExp, err := ts.sign(ts.access, account, now)
	if err != nil {
		return nil, err
	}

	refresh, refreshExp, err := ts.sign(ts.refresh, account, now)
	if err != nil {
		return nil, err
	}

	pair := &SessionTokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}

	attachSession(ctx, account, pair)

	return pair, nil
}

// ValidateAccess parses an access token
func (ts *TokenServiceImpl) ValidateAccess(token string) (*SessionClaims, error) {
	return ts.validate(ts.access, token)
}

// ValidateRefresh parses a refresh token
func (ts *TokenServiceImpl) ValidateRefresh(token string) (*SessionClaims, error) {
	return ts.validate(ts.refresh, token)
}

func (ts *TokenServiceImpl) sign(signer tokenSigner, account *Account, now time.Time) (string, time.Time, error) {
	if len(signer.secret) == 0 {
		return "", time.Time{}, goerrors.New("signing secret is not configured", goerrors.CategoryInternal).
			WithMetadata(map[string]any{"kind": string(signer.kind)})
	}

	expiresAt := now.Add(signer.ttl)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   account.ID.String(),
			Audience:  jwt.ClaimStrings{signer.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:       account.ID.String(),
		UserEmail: account.Email,
		TokenKind: signer.kind,
	}

	ensureTokenID(&claims.RegisteredClaims)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signer.secret)
	if err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, expiresAt, nil
}

func (ts *TokenServiceImpl) validate(signer tokenSigner, tokenString string) (*SessionClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(signer.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return signer.secret, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		ts.logger.Debug("token validation failed", "kind", signer.kind, "error", err)
		return nil, ErrTokenMalformed
	}

	if !token.Valid || claims.TokenKind != signer.kind {
		ts.logger.Error("token validate found unexpected claims", "kind", claims.TokenKind)
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
