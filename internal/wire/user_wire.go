package wire

import (
	"audit-auth/internal/adaptor"
	"audit-auth/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	tokens middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.With(middleware.Auth(tokens, log)).Get("/me", userHandler.Me)
}
