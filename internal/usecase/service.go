package usecase

import (
	"audit-auth/internal/data/repository"
	"audit-auth/pkg/mailer"
	"audit-auth/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth AuthService
	User UserService
}

func NewService(
	repo *repository.Repository,
	tokens TokenIssuer,
	notifier mailer.Notifier,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth: NewAuthService(
			repo,
			utils.NewBcryptHasher(),
			utils.NewOTPGenerator(config.OTP.Length),
			tokens,
			notifier,
			config,
			log,
		),
		User: NewUserService(repo.User, log),
	}
}
