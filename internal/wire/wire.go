package wire

import (
	"context"
	"net/http"
	"time"

	"audit-auth/internal/adaptor"
	"audit-auth/internal/data/repository"
	"audit-auth/internal/usecase"
	"audit-auth/pkg/mailer"
	"audit-auth/pkg/middleware"
	"audit-auth/pkg/ratelimit"
	"audit-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired HTTP surface.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Deps are the infrastructure pieces built in main.
type Deps struct {
	Repo     *repository.Repository
	Tokens   *utils.TokenIssuer
	Notifier mailer.Notifier
	Limiter  ratelimit.Limiter
}

// Wiring builds services, handlers and the router.
func Wiring(deps Deps, config *utils.Config, logger *zap.Logger) *App {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.Noop{}
	}

	service := usecase.NewService(deps.Repo, deps.Tokens, deps.Notifier, config, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(handler, deps, config, logger),
		Service: service,
	}
}

func setupRouter(handler *adaptor.Handler, deps Deps, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	r.Route("/api/auth", func(r chi.Router) {
		wireAuth(r, handler.Auth, deps.Limiter, logger)
		wireUser(r, handler.User, deps.Tokens, logger)
	})

	r.Get("/health", health(deps.Repo, logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseError(w, http.StatusNotFound, "Route not found", "NOT_FOUND")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	return r
}

func health(repo *repository.Repository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := repo.Ping(ctx); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			utils.ResponseError(w, http.StatusServiceUnavailable, "Storage unavailable", "UNAVAILABLE")
			return
		}
		utils.ResponseJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
