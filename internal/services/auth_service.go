package services

import (
	"context"
	"fmt"
	"strings"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/config"
	"movie-booking/internal/models"
	"movie-booking/internal/repository"
	"movie-booking/internal/utils"

	"github.com/sirupsen/logrus"
)

type RegisterInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"omitempty,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name           *string  `json:"name" validate:"omitempty,min=1,max=100"`
	FavoriteGenres []string `json:"favorite_genres" validate:"omitempty,max=20,dive,required,max=50"`
	Notifications  *bool    `json:"notifications"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User        *models.User      `json:"user"`
	AccessToken utils.AccessToken `json:"access_token"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (*models.User, error)
	// EnsureAdmin creates the bootstrap admin, or promotes an existing
	// account with that email, when credentials are configured.
	EnsureAdmin(ctx context.Context) error
}

type authService struct {
	users  repository.UserRepository
	config config.AuthConfig
	logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, cfg config.AuthConfig, logger *logrus.Logger) AuthService {
	return &authService{users: users, config: cfg, logger: logger}
}

const invalidCredentials = "invalid email or password"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("email is already registered", input.Email)
	}

	hash, err := utils.HashPassword(input.Password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:           input.Name,
		Email:          input.Email,
		PasswordHash:   hash,
		Role:           models.RoleCustomer,
		FavoriteGenres: []string{},
		Notifications:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !utils.VerifyPassword(user.PasswordHash, input.Password) {
		return nil, apperrors.NewUnauthorizedError(invalidCredentials)
	}
	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, err := utils.NewAccessToken(s.config.JWTSecret, user.ID, user.Role, user.Email, s.config.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResult{User: user, AccessToken: token}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *authService) UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (*models.User, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.FavoriteGenres != nil {
		genres := make([]string, 0, len(input.FavoriteGenres))
		for _, g := range input.FavoriteGenres {
			genres = append(genres, strings.TrimSpace(g))
		}
		user.FavoriteGenres = genres
	}
	if input.Notifications != nil {
		user.Notifications = *input.Notifications
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context) error {
	email := normalizeEmail(s.config.AdminEmail)
	if email == "" || s.config.AdminPassword == "" {
		return nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if user != nil {
		if user.IsAdmin() {
			return nil
		}
		user.Role = models.RoleAdmin
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to promote admin: %w", err)
		}
		s.logger.WithField("email", email).Info("Existing user promoted to admin")
		return nil
	}

	hash, err := utils.HashPassword(s.config.AdminPassword, s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	name := s.config.AdminName
	if name == "" {
		name = "Administrator"
	}
	admin := &models.User{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		Role:           models.RoleAdmin,
		FavoriteGenres: []string{},
		Notifications:  true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	s.logger.WithField("email", email).Info("Admin account created")
	return nil
}
