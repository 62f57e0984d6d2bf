package adaptor

import (
	"net/http"

	"audit-auth/internal/usecase"
	"audit-auth/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// Me handles GET /api/auth/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	// set by the auth middleware
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required", utils.CodeInvalidToken)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, profile)
}
