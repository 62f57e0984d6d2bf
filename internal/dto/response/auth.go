package response

import (
	"time"

	"audit-auth/internal/data/entity"
)

type SignupResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type LoginResponse struct {
	Message     string `json:"message"`
	RequiresOTP bool   `json:"requiresOTP"`
	Email       string `json:"email"`
}

type VerifyOTPResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	IsVerified bool   `json:"isVerified"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		IsVerified: user.EmailVerified,
	}
}
