package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var otpPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so callers can branch on "email", "newPassword", ...
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("otp", func(fl validator.FieldLevel) bool {
		return otpPattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})

	return v
}

// ValidateStruct returns the field errors of data, or nil when it is valid.
func ValidateStruct(data any) validator.ValidationErrors {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return validationErrors
	}

	// InvalidValidationError: programming error, surface it as a generic failure
	return validator.ValidationErrors{}
}

// IsValidOTP reports whether code looks like an issued one-time code.
func IsValidOTP(code string) bool {
	return validate.Var(code, "otp") == nil
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidationMessages converts validator errors to human-readable messages keyed by field.
func ValidationMessages(errs validator.ValidationErrors) map[string]string {
	messages := make(map[string]string, len(errs))
	for _, err := range errs {
		messages[err.Field()] = getErrorMessage(err)
	}
	return messages
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "eqfield":
		return fmt.Sprintf("Must match %s", err.Param())
	case "otp":
		return "Must be 4 to 8 digits"
	case "pwbytes":
		return fmt.Sprintf("Maximum length is %d bytes", MaxPasswordBytes)
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}
