package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"audit-auth/internal/usecase"
	"audit-auth/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Auth *AuthHandler
	User *UserHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.Auth, log),
		User: NewUserHandler(service.User, log),
	}
}

// decodeJSON reads the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", utils.CodeInvalidRequest)
		return false
	}
	return true
}

// writeServiceError maps a usecase failure to its response. Anything that is
// not an AuthError is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, operation string) {
	var authErr *usecase.AuthError
	if errors.As(err, &authErr) {
		utils.ResponseError(w, authErr.Status, authErr.Message, authErr.Code)
		return
	}

	log.Error("Failed to "+operation,
		zap.Error(err),
		zap.String("operation", operation),
		zap.String("request_id", utils.GetRequestIDFromContext(r.Context())),
	)
	utils.ResponseInternalError(w)
}
