package adaptor

import (
	"net/http"

	"audit-auth/internal/dto/request"
	"audit-auth/internal/usecase"
	"audit-auth/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.log, err, "signup")
		return
	}

	utils.ResponseCreated(w, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, resp)
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.VerifyOTP(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.log, err, "verify OTP")
		return
	}

	utils.ResponseSuccess(w, resp)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req); err != nil {
		writeServiceError(w, r, h.log, err, "forgot password")
		return
	}

	utils.ResponseMessage(w, usecase.MsgForgotPassword)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		writeServiceError(w, r, h.log, err, "reset password")
		return
	}

	utils.ResponseMessage(w, usecase.MsgResetPassword)
}
