// internal/services/auth_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/config"
	"github.com/gamevault/gamevault-backend/internal/models"
	"github.com/gamevault/gamevault-backend/internal/repository"
	"github.com/gamevault/gamevault-backend/internal/utils"
)

type AuthService struct {
	store repository.Store
	cfg   config.JWTConfig
}

func NewAuthService(store repository.Store, cfg config.JWTConfig) *AuthService {
	return &AuthService{store: store, cfg: cfg}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     models.UserRole
}

type AuthResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Role == models.UserRoleAdmin {
		return nil, fmt.Errorf("cannot self-register as admin: %w", apperrors.ErrUnauthorized)
	}

	if _, err := s.store.Users().GetByUsername(ctx, input.Username); err == nil {
		return nil, fmt.Errorf("username already taken")
	}
	if _, err := s.store.Users().GetByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("email already registered")
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Role:     input.Role,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	}).Info("User registered")

	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, err
	}

	if err := user.CheckPassword(password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if user.Status != models.UserStatusActive {
		return nil, fmt.Errorf("account is %s", user.Status)
	}

	if err := s.store.Users().UpdateLastLogin(ctx, user.ID); err != nil {
		logrus.WithError(err).Warn("Failed to update last login timestamp")
	}

	return s.issueTokens(user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperrors.ErrUnauthorized)
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperrors.ErrUnauthorized)
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, fmt.Errorf("account is %s", user.Status)
	}

	return s.issueTokens(user)
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResult, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Username, string(user.Role), s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
