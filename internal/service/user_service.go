package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"shareit/internal/apperr"
	"shareit/internal/domain"
	"shareit/internal/models"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

type UserService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewUserService(store domain.Store, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func (s *UserService) CreateUser(ctx context.Context, input models.CreateUserInput) (*models.User, error) {
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.Validation("user name is required")
	}

	user := &models.User{Name: input.Name, Email: input.Email}
	// Уникальность email обеспечивает индекс; хранилище вернет Conflict
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, userID int64, input models.UpdateUserInput) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		if err := validateEmail(*input.Email); err != nil {
			return nil, err
		}
		user.Email = *input.Email
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperr.Validation("user name cannot be blank")
		}
		user.Name = *input.Name
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.GetAllUsers(ctx)
}

func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	return s.store.DeleteUser(ctx, userID)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.Validation("email is required")
	}
	if !emailPattern.MatchString(email) {
		return apperr.Validation("invalid email format: %s", email)
	}
	return nil
}
