package jwtware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	auth "github.com/goliatone/go-accounts"
)

var (
	defaultTokenLookup        = "header:" + fiber.HeaderAuthorization
	defaultRefreshTokenLookup = "header:" + auth.RefreshTokenHeader
	ErrJWTMissingOrMalformed  = errors.New("missing or malformed JWT")
)

// SessionResolver turns the tokens of a request into a SessionContext.
// *auth.Auther implements it.
type SessionResolver interface {
	ResolveSession(ctx context.Context, accessToken, refreshToken string) (*auth.SessionContext, error)
}

// SessionResolverFunc adapts a function to SessionResolver
type SessionResolverFunc func(ctx context.Context, accessToken, refreshToken string) (*auth.SessionContext, error)

func (f SessionResolverFunc) ResolveSession(ctx context.Context, accessToken, refreshToken string) (*auth.SessionContext, error) {
	return f(ctx, accessToken, refreshToken)
}

// ValidationListener is invoked after a session has been resolved and
// before the request proceeds.
type ValidationListener func(c *fiber.Ctx, session *auth.SessionContext) error

type Config struct {
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler
	// ContextKey is the fiber Locals key holding the *auth.SessionContext
	ContextKey  string
	TokenLookup string
	// RefreshTokenLookup is optional, a missing refresh token is not an error
	RefreshTokenLookup string
	AuthScheme         string
	// Resolver is required
	Resolver            SessionResolver
	ValidationListeners []ValidationListener
}

// New returns a guard that resolves the request tokens and attaches the
// resulting session to both the fiber Locals and the user context.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()
	refreshExtractors := GetExtractors(cfg.RefreshTokenLookup, "")

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		access, err := ExtractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		// optional
		refresh, _ := ExtractRawToken(c, refreshExtractors)

		session, err := cfg.Resolver.ResolveSession(c.UserContext(), access, refresh)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := cfg.runValidationListeners(c, session); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		ctx := auth.WithSession(c.UserContext(), session)
		if session.Claims != nil {
			ctx = auth.WithClaimsContext(ctx, session.Claims)
		}

		c.Locals(cfg.ContextKey, session)
		c.SetUserContext(ctx)

		return cfg.SuccessHandler(c)
	}
}

// SessionFromLocals returns the session stored by the guard under key
func SessionFromLocals(c *fiber.Ctx, key string) (*auth.SessionContext, bool) {
	session, ok := c.Locals(key).(*auth.SessionContext)
	if !ok || session == nil {
		return nil, false
	}
	return session, true
}

func ExtractRawToken(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	var raw string
	err := ErrJWTMissingOrMalformed

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.Resolver == nil {
		panic("ACCOUNTS: JWT middleware configuration: Resolver is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "session"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.RefreshTokenLookup == "" {
		cfg.RefreshTokenLookup = defaultRefreshTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// DefaultErrorHandler writes an auth.ErrorBody. A missing token is a 400,
// categorized errors use auth.StatusForError and anything else is a 401.
func DefaultErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrJWTMissingOrMalformed) {
		return c.Status(fiber.StatusBadRequest).JSON(auth.ErrorBody{Error: auth.ErrorDetail{
			Message:  ErrJWTMissingOrMalformed.Error(),
			TextCode: auth.TextCodeTokenMissing,
		}})
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return c.Status(fiber.StatusUnauthorized).JSON(auth.ErrorBody{Error: auth.ErrorDetail{
			Message: "Invalid or expired token",
		}})
	}

	status := auth.StatusForError(richErr)
	if status >= fiber.StatusInternalServerError {
		return c.Status(status).JSON(auth.ErrorBody{Error: auth.ErrorDetail{
			Message:  "An unexpected server error occurred",
			TextCode: richErr.TextCode,
		}})
	}

	return c.Status(status).JSON(auth.ErrorBody{Error: auth.ErrorDetail{
		Message:  richErr.Message,
		TextCode: richErr.TextCode,
	}})
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, session *auth.SessionContext) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, session); err != nil {
			return err
		}
	}
	return nil
}

// GetExtractors parses a lookup such as
// "header:Authorization,cookie:jwt,query:auth_token,param:token".
// An empty auth scheme reads header values as is.
func GetExtractors(tokenLookup string, authScheme string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, jwtFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		default:
			fmt.Printf("[WARNING] unknown token lookup source %q\n", parts[0])
		}
	}

	return extractors
}

type JWTExtractor func(c *fiber.Ctx) (string, error)

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		if authScheme == "" {
			if a = strings.TrimSpace(a); a == "" {
				return "", ErrJWTMissingOrMalformed
			}
			return a, nil
		}

		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
