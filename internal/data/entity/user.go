package entity

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxFullNameLength = 100
	MinPasswordLength = 6
)

var (
	ErrFullNameRequired = errors.New("full name is required")
	ErrFullNameTooLong  = errors.New("full name exceeds 100 characters")
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailNotNormal   = errors.New("email must be trimmed and lowercase")
	ErrPasswordNotHash  = errors.New("password hash is required")
)

type User struct {
	Base
	FullName      string `db:"full_name"`
	Email         string `db:"email"`
	PasswordHash  string `db:"password"`
	EmailVerified bool   `db:"email_verified"`
}

// ValidateUser checks the record invariants before it is persisted. Input
// syntax (email format, password length) is the caller's job; this guards
// against storing un-normalized emails or a missing hash.
func ValidateUser(u *User) error {
	name := strings.TrimSpace(u.FullName)
	if name == "" {
		return ErrFullNameRequired
	}
	if utf8.RuneCountInString(name) > MaxFullNameLength {
		return ErrFullNameTooLong
	}
	if u.Email == "" {
		return ErrEmailRequired
	}
	if u.Email != strings.ToLower(strings.TrimSpace(u.Email)) {
		return ErrEmailNotNormal
	}
	if u.PasswordHash == "" {
		return ErrPasswordNotHash
	}
	return nil
}
