package auth_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-accounts"
)

func fieldErrors(t *testing.T, err error) map[string]any {
	t.Helper()
	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	return richErr.Metadata
}

func TestRegisterAccountMessageValidate(t *testing.T) {
	assert.NoError(t, anaRegistration().Validate())

	err := auth.RegisterAccountMessage{}.Validate()
	require.Error(t, err)

	fields := fieldErrors(t, err)
	assert.Equal(t, "Name is required.", fields["name"])
	assert.Equal(t, "Email is required.", fields["email"])
	assert.Equal(t, "Password is required.", fields["password"])
	assert.Equal(t, "Phone number is required.", fields["phone_number"])
}

func TestRegisterAccountMessagePhoneRule(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{anaPhone, true},
		{"+1 201-555-0124", true},
		{"(201) 555-0123", true},
		{"ana@x.com", false},
		{"+15555550123", true},
		{"12", false},
		{"+999999", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			msg := anaRegistration()
			msg.PhoneNumber = tt.phone

			err := msg.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, "Invalid phone number!.", fieldErrors(t, err)["phone_number"])
		})
	}
}

func TestRegisterAccountMessagePasswordLength(t *testing.T) {
	msg := anaRegistration()
	msg.Password = "1234567"
	err := msg.Validate()
	require.Error(t, err)
	assert.Contains(t, fieldErrors(t, err), "password")

	msg.Password = "12345678"
	assert.NoError(t, msg.Validate())
}

func TestLoginRequestValidate(t *testing.T) {
	assert.NoError(t, auth.LoginRequest{Email: "ana@x.com", Password: "x"}.Validate())
	assert.NoError(t, auth.LoginRequest{Email: "nobody", Password: "x"}.Validate())

	err := auth.LoginRequest{}.Validate()
	require.Error(t, err)
	fields := fieldErrors(t, err)
	assert.Equal(t, "Email is required.", fields["email"])
	assert.Equal(t, "Password is required.", fields["password"])
}

func TestIsPhoneNumber(t *testing.T) {
	assert.True(t, auth.IsPhoneNumber(anaPhone, "US"))
	assert.True(t, auth.IsPhoneNumber("(201) 555-0124", "US"))
	assert.True(t, auth.IsPhoneNumber("+1 555 123 4567", "US"))
	assert.True(t, auth.IsPhoneNumber("020 7946 0958", "GB"))
	assert.False(t, auth.IsPhoneNumber("020 7946 0958", "US"))
	assert.False(t, auth.IsPhoneNumber("not a number", "US"))
}

func TestPhoneNumberRuleDefaultsRegion(t *testing.T) {
	rule := auth.PhoneNumberRule("")
	assert.NoError(t, rule("(201) 555-0123"))
	assert.NoError(t, rule(""))
	assert.Error(t, rule("ana@x.com"))
}
