package usecase

import "net/http"

// AuthError is an expected failure with the HTTP status and machine-readable
// code it is reported with.
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrMissingFields      = &AuthError{http.StatusBadRequest, "MISSING_FIELDS", "All fields are required"}
	ErrInvalidFullName    = &AuthError{http.StatusBadRequest, "INVALID_FULL_NAME", "Full name must be between 1 and 100 characters"}
	ErrInvalidEmail       = &AuthError{http.StatusBadRequest, "INVALID_EMAIL", "Please provide a valid email address"}
	ErrInvalidPassword    = &AuthError{http.StatusBadRequest, "INVALID_PASSWORD", "Password must be at least 6 characters and at most 72 bytes long"}
	ErrPasswordMismatch   = &AuthError{http.StatusBadRequest, "PASSWORD_MISMATCH", "Passwords do not match"}
	ErrInvalidOTPFormat   = &AuthError{http.StatusBadRequest, "INVALID_OTP", "OTP must be 4 to 8 digits"}
	ErrEmailExists        = &AuthError{http.StatusConflict, "EMAIL_EXISTS", "An account with this email already exists"}
	ErrInvalidCredentials = &AuthError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrUserNotFound       = &AuthError{http.StatusNotFound, "USER_NOT_FOUND", "User not found"}
	ErrOTPInvalid         = &AuthError{http.StatusUnauthorized, "OTP_INVALID", "Invalid or expired OTP"}
)
