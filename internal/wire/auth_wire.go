package wire

import (
	"audit-auth/internal/adaptor"
	"audit-auth/pkg/middleware"
	"audit-auth/pkg/ratelimit"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	limiter ratelimit.Limiter,
	log *zap.Logger,
) {
	r.Post("/signup", authHandler.Signup)
	r.Post("/forgot-password", authHandler.ForgotPassword)

	// ==================== THROTTLED ROUTES ====================
	// repeated 401s from one ip lead to a temporary ban
	throttled := r.With(middleware.Throttle(limiter, log))
	throttled.Post("/login", authHandler.Login)
	throttled.Post("/verify-otp", authHandler.VerifyOTP)
	throttled.Post("/reset-password", authHandler.ResetPassword)
}
