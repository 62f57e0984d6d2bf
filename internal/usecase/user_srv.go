package usecase

import (
	"context"
	"fmt"

	"audit-auth/internal/data/repository"
	"audit-auth/internal/dto/response"

	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*response.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

func (us *userService) GetProfile(ctx context.Context, userID int64) (*response.UserResponse, error) {
	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		us.log.Warn("Profile requested for missing user", zap.Int64("user_id", userID))
		return nil, ErrUserNotFound
	}

	profile := response.UserToResponse(user)
	return &profile, nil
}
