package request

import (
	"encoding/json"
	"strings"

	"audit-auth/pkg/utils"
)

type SignupRequest struct {
	FullName        string `json:"fullName" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,pwbytes"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (r *SignupRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = utils.NormalizeEmail(r.Email)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
}

// VerifyOTPRequest identifies the user by id or by email; id wins when both are sent.
type VerifyOTPRequest struct {
	ID    json.Number `json:"id,omitempty"`
	Email string      `json:"email,omitempty" validate:"omitempty,email"`
	Code  string      `json:"code" validate:"otp"`
}

func (r *VerifyOTPRequest) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
	r.Code = strings.TrimSpace(r.Code)
}

// HasID reports whether an id was supplied at all, valid or not.
func (r *VerifyOTPRequest) HasID() bool {
	return strings.TrimSpace(r.ID.String()) != ""
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"email"`
}

func (r *ForgotPasswordRequest) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,pwbytes"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func (r *ResetPasswordRequest) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
	r.Code = strings.TrimSpace(r.Code)
}
