package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidationFailed   = "VALIDATION_FAILED"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	TextCodeActivationInvalid  = "ACTIVATION_TOKEN_INVALID"
	TextCodeActivationMismatch = "ACTIVATION_CODE_MISMATCH"
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenMissing       = "TOKEN_MISSING"
	TextCodeSessionNotFound    = "SESSION_NOT_FOUND"
	TextCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
)

// IncorrectCredentialsMessage is the single message returned for every failed login
const IncorrectCredentialsMessage = "Incorrect email or password!"

var (
	// ErrNoEmptyString is returned when hashing an empty password
	ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
				WithTextCode(TextCodeEmptyPassword)

	// ErrMismatchedHashAndPassword password and hash do not match
	ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
					WithTextCode(TextCodeInvalidCreds)

	// ErrPhoneAlreadyExists phone number is taken by another account
	ErrPhoneAlreadyExists = goerrors.New("phone number already exists", goerrors.CategoryConflict).
				WithTextCode(TextCodeDuplicateAccount)

	// ErrEmailAlreadyExists email is taken by another account
	ErrEmailAlreadyExists = goerrors.New("email already exists", goerrors.CategoryConflict).
				WithTextCode(TextCodeDuplicateAccount)

	// ErrTokenInvalidOrExpired activation token failed signature or expiry checks
	ErrTokenInvalidOrExpired = goerrors.New("activation token is invalid or has expired", goerrors.CategoryAuth).
					WithTextCode(TextCodeActivationInvalid)

	// ErrCodeMismatch the supplied activation code is not the one we sent
	ErrCodeMismatch = goerrors.New("invalid activation code", goerrors.CategoryBadInput).
			WithTextCode(TextCodeActivationMismatch)

	// ErrTokenExpired session token is past its expiration
	ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
			WithTextCode(TextCodeTokenExpired)

	// ErrTokenMalformed session token could not be parsed or verified
	ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
				WithTextCode(TextCodeTokenMalformed)

	// ErrUnableToFindSession request carries no session
	ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
				WithTextCode(TextCodeSessionNotFound)

	// ErrAccountNotFound token subject no longer resolves to an account
	ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryAuth).
				WithTextCode(TextCodeAccountNotFound)
)

// NewValidationError builds a validation error carrying the per field
// messages in its metadata
func NewValidationError(fields map[string]string) *goerrors.Error {
	metadata := make(map[string]any, len(fields))
	for k, v := range fields {
		metadata[k] = v
	}
	return goerrors.New("invalid input", goerrors.CategoryValidation).
		WithTextCode(TextCodeValidationFailed).
		WithMetadata(metadata)
}

// IsValidationError reports a missing or malformed input field
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidationFailed)
}

// IsDuplicateAccount reports an email or phone number clash
func IsDuplicateAccount(err error) bool {
	return hasTextCode(err, TextCodeDuplicateAccount)
}

// IsTokenInvalidOrExpired reports a rejected activation token
func IsTokenInvalidOrExpired(err error) bool {
	return hasTextCode(err, TextCodeActivationInvalid)
}

// IsCodeMismatch reports a wrong activation code
func IsCodeMismatch(err error) bool {
	return hasTextCode(err, TextCodeActivationMismatch)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed")
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
