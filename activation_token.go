package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultActivationTTL is how long a registration can wait for activation
const DefaultActivationTTL = 5 * time.Minute

const activationAudience = "accounts:activation"

// ActivationClaims is the signed payload of an activation token
type ActivationClaims struct {
	jwt.RegisteredClaims
	User           PendingUser `json:"user"`
	ActivationCode string      `json:"activationCode"`
}

// ActivationTokenCodec packs a pending account and its activation code
// into a signed token, so no pending registration is stored server side.
type ActivationTokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	codes  func() (string, error)
	logger Logger
}

// ActivationCodecOption configures an ActivationTokenCodec
type ActivationCodecOption func(*ActivationTokenCodec)

// WithActivationClock overrides the clock used to stamp and verify tokens
func WithActivationClock(now func() time.Time) ActivationCodecOption {
	return func(c *ActivationTokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithActivationCodeGenerator overrides how activation codes are drawn
func WithActivationCodeGenerator(gen func() (string, error)) ActivationCodecOption {
	return func(c *ActivationTokenCodec) {
		if gen != nil {
			c.codes = gen
		}
	}
}

// WithActivationLogger sets the codec logger
func WithActivationLogger(logger Logger) ActivationCodecOption {
	return func(c *ActivationTokenCodec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewActivationTokenCodec creates a codec. A non positive ttl
// falls back to DefaultActivationTTL.
func NewActivationTokenCodec(secret []byte, ttl time.Duration, issuer string, opts ...ActivationCodecOption) *ActivationTokenCodec {
	if ttl <= 0 {
		ttl = DefaultActivationTTL
	}

	c := &ActivationTokenCodec{
		secret: secret,
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
		codes:  GenerateActivationCode,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// NewActivationTokenCodecFromConfig reads secret, ttl and issuer from cfg
func NewActivationTokenCodecFromConfig(cfg Config, opts ...ActivationCodecOption) *ActivationTokenCodec {
	return NewActivationTokenCodec(
		[]byte(cfg.GetActivationSecret()),
		cfg.GetActivationTTL(),
		cfg.GetIssuer(),
		opts...,
	)
}

// TTL returns the lifetime of minted tokens
func (c *ActivationTokenCodec) TTL() time.Duration {
	return c.ttl
}

// Encode draws a fresh activation code and signs it together with user.
// The code is returned separately and must only reach the user out of band.
func (c *ActivationTokenCodec) Encode(user PendingUser) (*ActivationToken, error) {
	if len(c.secret) == 0 {
		return nil, goerrors.New("activation secret is not configured", goerrors.CategoryInternal)
	}

	code, err := c.codes()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate activation code")
	}

	now := c.now()
	expiresAt := now.Add(c.ttl)

	claims := &ActivationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   user.Email,
			Audience:  jwt.ClaimStrings{activationAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		User:           user,
		ActivationCode: code,
	}

	ensureTokenID(&claims.RegisteredClaims)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign activation token")
	}

	return &ActivationToken{
		Token:     signed,
		Code:      code,
		ExpiresAt: expiresAt,
	}, nil
}

// Decode verifies signature and expiry of token. Any failure is reported
// as ErrTokenInvalidOrExpired; the activation code is not checked here.
func (c *ActivationTokenCodec) Decode(token string) (*ActivationClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(activationAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(c.issuer))
	}

	claims := &ActivationClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, parserOptions...)
	if err != nil {
		c.logger.Debug("activation token rejected", "error", err)
		return nil, ErrTokenInvalidOrExpired
	}

	if !parsed.Valid {
		return nil, ErrTokenInvalidOrExpired
	}

	return claims, nil
}

// GenerateActivationCode returns a uniformly drawn code in 1000-9999
func GenerateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return strconv.FormatInt(1000+n.Int64(), 10), nil
}
