package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/goliatone/go-accounts"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPassword(tt.password)

			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrNoEmptyString)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, auth.PasswordMatches(tt.password, hash))
		})
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := auth.HashPassword("password1")
	require.NoError(t, err)
	second, err := auth.HashPassword("password1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, auth.PasswordMatches("password1", first))
	assert.True(t, auth.PasswordMatches("password1", second))
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  auth.ErrMismatchedHashAndPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPasswordMatchesNeverErrors(t *testing.T) {
	assert.False(t, auth.PasswordMatches("password1", "not-a-bcrypt-hash"))
	assert.False(t, auth.PasswordMatches("", ""))
}

func TestBcryptHasher(t *testing.T) {
	var hasher auth.PasswordAuthenticator = auth.BcryptHasher{}

	hash, err := hasher.HashPassword("password1")
	require.NoError(t, err)
	assert.NoError(t, hasher.ComparePasswordAndHash("password1", hash))
	assert.Error(t, hasher.ComparePasswordAndHash("password2", hash))
}

func TestHashPasswordUsesCostTen(t *testing.T) {
	hash, err := auth.HashPassword("password1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)

	hash, err = auth.BcryptHasher{}.HashPassword("password1")
	require.NoError(t, err)
	cost, err = bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}
