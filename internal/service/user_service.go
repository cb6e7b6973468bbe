package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUsernameTooShort  = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
)

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// registration fields are validated in declaration order.
type registration struct {
	Username string `validate:"min=3"`
	Password string `validate:"min=6"`
}

type userService struct {
	users    repository.UserRepository
	validate *validator.Validate
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{
		users:    users,
		validate: validator.New(),
	}
}

func (s *userService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	req := registration{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}
	if err := s.checkRegistration(req); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := domain.NewUser(req.Username, hash, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) checkRegistration(req registration) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate registration: %w", err)
	}
	switch fieldErrs[0].Field() {
	case "Username":
		return ErrUsernameTooShort
	default:
		return ErrPasswordTooShort
	}
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
}
