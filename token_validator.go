package auth

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// AccessTokenValidator accepts access tokens only
func AccessTokenValidator(ts TokenService) TokenValidator {
	return TokenValidatorFunc(func(tokenString string) (AuthClaims, error) {
		claims, err := ts.ValidateAccess(tokenString)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}

// RefreshTokenValidator accepts refresh tokens only
func RefreshTokenValidator(ts TokenService) TokenValidator {
	return TokenValidatorFunc(func(tokenString string) (AuthClaims, error) {
		claims, err := ts.ValidateRefresh(tokenString)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}
