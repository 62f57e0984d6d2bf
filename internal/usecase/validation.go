package usecase

import (
	"fmt"

	"audit-auth/pkg/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// validationPriority orders the errors reported when several fields fail.
var validationPriority = []*AuthError{
	ErrMissingFields,
	ErrInvalidFullName,
	ErrInvalidEmail,
	ErrInvalidPassword,
	ErrPasswordMismatch,
	ErrInvalidOTPFormat,
}

// validate checks req and returns the highest-priority AuthError, or nil.
func validate(req any) error {
	return toAuthError(req, utils.ValidateStruct(req))
}

// checkRequest is validate plus a warning naming every failing field.
func (s *authService) checkRequest(op string, req any) error {
	errs := utils.ValidateStruct(req)
	err := toAuthError(req, errs)
	if err != nil {
		s.log.Warn(op+" validation failed",
			zap.Error(err),
			zap.Any("fields", utils.ValidationMessages(errs)),
		)
	}
	return err
}

func toAuthError(req any, errs validator.ValidationErrors) error {
	if errs == nil {
		return nil
	}
	if len(errs) == 0 {
		return fmt.Errorf("validate %T: unsupported input", req)
	}

	best := len(validationPriority)
	for _, fe := range errs {
		if rank := rankOf(fieldError(fe)); rank < best {
			best = rank
		}
	}
	if best == len(validationPriority) {
		return ErrMissingFields
	}
	return validationPriority[best]
}

func fieldError(fe validator.FieldError) *AuthError {
	switch {
	case fe.Tag() == "otp":
		return ErrInvalidOTPFormat
	case fe.Tag() == "required":
		return ErrMissingFields
	case fe.Field() == "fullName":
		return ErrInvalidFullName
	case fe.Tag() == "email":
		return ErrInvalidEmail
	case fe.Tag() == "min", fe.Tag() == "pwbytes":
		return ErrInvalidPassword
	case fe.Tag() == "eqfield":
		return ErrPasswordMismatch
	}
	return ErrMissingFields
}

func rankOf(err *AuthError) int {
	for i, e := range validationPriority {
		if e == err {
			return i
		}
	}
	return len(validationPriority)
}
