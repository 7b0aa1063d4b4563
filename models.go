package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is a finalized, activated account
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	PhoneNumber   string     `bun:"phone_number,notnull,unique" json:"phone_number,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PendingUser is an account waiting for activation. It only
// ever lives inside a signed activation token.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	PhoneNumber  string `json:"phone_number"`
}

// NewAccount builds the account record for an activated pending user
func (p PendingUser) NewAccount() *Account {
	return &Account{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		PhoneNumber:  p.PhoneNumber,
	}
}

// ActivationToken is the result of encoding a PendingUser
type ActivationToken struct {
	Token     string
	Code      string
	ExpiresAt time.Time
}

// SessionTokenPair holds the tokens minted for an authenticated account
type SessionTokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
