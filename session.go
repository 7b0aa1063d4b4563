package auth

import (
	"context"
	"time"
)

// LogoutMessage is returned by every Logout call
const LogoutMessage = "Logged out successfully"

// SessionContext holds the identity attached to a single request.
// It is owned by that request and must not be shared.
type SessionContext struct {
	Account *Account
	// Claims of the access token, nil when the session was attached by Login
	Claims       AuthClaims
	AccessToken  string
	RefreshToken string
}

// IsAuthenticated reports whether an account is attached
func (s *SessionContext) IsAuthenticated() bool {
	return s != nil && s.Account != nil
}

// Clear drops the account, its claims and both tokens
func (s *SessionContext) Clear() {
	if s == nil {
		return
	}
	s.Account = nil
	s.Claims = nil
	s.AccessToken = ""
	s.RefreshToken = ""
}

// SessionResponse is the read model of the current session
type SessionResponse struct {
	Account         *Account   `json:"account"`
	AccessToken     *string    `json:"access_token"`
	RefreshToken    *string    `json:"refresh_token"`
	AccessExpiresAt *time.Time `json:"access_expires_at,omitempty"`
}

// LogoutResponse confirms a logout
type LogoutResponse struct {
	Message string `json:"message"`
}

// GetCurrentSession returns whatever an upstream guard attached to ctx.
// Tokens are not verified here.
func GetCurrentSession(ctx context.Context) SessionResponse {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return SessionResponse{}
	}

	res := SessionResponse{
		Account:      session.Account,
		AccessToken:  optionalString(session.AccessToken),
		RefreshToken: optionalString(session.RefreshToken),
	}

	if claims, ok := GetClaims(ctx); ok && claims != nil && session.Account != nil {
		if exp := claims.Expires(); !exp.IsZero() {
			res.AccessExpiresAt = &exp
		}
	}

	return res
}

// Logout clears the session attached to ctx. Issued tokens stay valid
// until they expire.
func Logout(ctx context.Context) LogoutResponse {
	if session, ok := SessionFromContext(ctx); ok {
		session.Clear()
	}
	return LogoutResponse{Message: LogoutMessage}
}

func attachSession(ctx context.Context, account *Account, pair *SessionTokenPair) {
	if ctx == nil {
		return
	}

	session, ok := SessionFromContext(ctx)
	if !ok {
		return
	}

	session.Account = account
	session.AccessToken = pair.AccessToken
	session.RefreshToken = pair.RefreshToken
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
