package auth

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used to parse numbers written without a
// leading country code when no region is configured
const DefaultPhoneRegion = "US"

// Validate will run validation rules, phone numbers without a country
// code are read in DefaultPhoneRegion
func (m RegisterAccountMessage) Validate() error {
	return m.ValidateInRegion(DefaultPhoneRegion)
}

// ValidateInRegion will run validation rules, phone numbers without a
// country code are read in region
func (m RegisterAccountMessage) ValidateInRegion(region string) error {
	return asValidationError(validation.ValidateStruct(&m,
		validation.Field(&m.Name,
			validation.Required.Error("Name is required."),
			validation.Length(1, 200),
		),
		validation.Field(&m.Email,
			validation.Required.Error("Email is required."),
			is.Email.Error("Invalid email!."),
		),
		validation.Field(&m.Password,
			validation.Required.Error("Password is required."),
			validation.Length(8, 72).Error("Password must be at least 8 characters"),
		),
		validation.Field(&m.PhoneNumber,
			validation.Required.Error("Phone number is required."),
			validation.By(PhoneNumberRule(region)),
		),
	))
}

// Validate will run validation rules
func (m ActivateAccountMessage) Validate() error {
	return asValidationError(validation.ValidateStruct(&m,
		validation.Field(&m.ActivationToken,
			validation.Required.Error("Activation Token is required"),
		),
		validation.Field(&m.ActivationCode,
			validation.Required.Error("Activation code is required!"),
		),
	))
}

// Validate only checks that both credentials are present. A badly
// formed email gets the same answer as an unknown one.
func (r LoginRequest) Validate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("Email is required."),
		),
		validation.Field(&r.Password,
			validation.Required.Error("Password is required."),
		),
	))
}

// PhoneNumberRule is an ozzo rule accepting any number with a plausible
// shape and length. Numbering plan assignments are not checked, so
// reserved ranges such as +1 555 pass. Empty values pass, pair with Required.
func PhoneNumberRule(region string) validation.RuleFunc {
	if region == "" {
		region = DefaultPhoneRegion
	}
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return nil
		}
		if !IsPhoneNumber(s, region) {
			return errors.New("Invalid phone number!.")
		}
		return nil
	}
}

// IsPhoneNumber reports whether phone parses as a possible number
func IsPhoneNumber(phone, region string) bool {
	num, err := phonenumbers.Parse(strings.TrimSpace(phone), region)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			fields[field] = ferr.Error()
		}
		return NewValidationError(fields)
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to run validation rules")
}
