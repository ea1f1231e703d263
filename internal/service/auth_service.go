package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled means the account or its school has been deactivated.
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrPasswordMismatch means the supplied current password is wrong.
	ErrPasswordMismatch = errors.New("current password is incorrect")
)

// AuthService handles login, token lifecycle, and password management.
type AuthService struct {
	users    repository.UserRepository
	tokens   *TokenService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, tokens *TokenService, validate *validator.Validate, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		validate: validate,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

// Login verifies credentials and issues a token pair. Disabled accounts and
// accounts whose school is disabled are rejected after the password check so
// the two failures are indistinguishable in timing.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (dto.TokenPairResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.TokenPairResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenPairResponse{}, ErrInvalidCredentials
		}
		return dto.TokenPairResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.TokenPairResponse{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return dto.TokenPairResponse{}, ErrAccountDisabled
	}
	if user.School != nil && !user.School.IsActive {
		return dto.TokenPairResponse{}, ErrAccountDisabled
	}

	access, refresh, err := s.tokens.IssuePair(user)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record last login")
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user logged in")

	return dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         dto.NewUserResponse(user),
	}, nil
}

// Refresh rotates a refresh token: the old token is blacklisted for its
// remaining lifetime and a fresh pair is issued.
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest) (dto.TokenPairResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.TokenPairResponse{}, err
	}

	claims, err := s.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		return dto.TokenPairResponse{}, ErrInvalidToken
	}

	revoked, err := s.tokens.IsBlacklisted(ctx, claims.JTI)
	if err != nil {
		return dto.TokenPairResponse{}, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return dto.TokenPairResponse{}, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenPairResponse{}, ErrInvalidToken
		}
		return dto.TokenPairResponse{}, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return dto.TokenPairResponse{}, ErrAccountDisabled
	}

	access, refresh, err := s.tokens.IssuePair(user)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	if err := s.tokens.Blacklist(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		s.logger.Warn().Err(err).Msg("failed to blacklist rotated refresh token")
	}

	return dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         dto.NewUserResponse(user),
	}, nil
}

// Logout revokes the refresh token so it can no longer mint access tokens.
func (s *AuthService) Logout(ctx context.Context, req dto.LogoutRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	claims, err := s.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.tokens.Blacklist(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", claims.UserID).Msg("user logged out")
	return nil
}

// Me returns the authenticated user's own record.
func (s *AuthService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

// ChangePassword verifies the current password before writing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// RequestPasswordReset issues a one-time reset token for the email. Unknown
// emails succeed silently so the endpoint cannot be used to probe accounts.
// Delivery is out of scope here; the token is logged for the ops channel.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil
	}

	token, err := s.tokens.IssueResetToken(ctx, user.ID)
	if err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("reset_token", token).Msg("password reset token issued")
	return nil
}

// ConfirmPasswordReset consumes the one-time token and sets the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirmRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	userID, err := s.tokens.ConsumeResetToken(ctx, req.Token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", userID).Msg("password reset completed")
	return nil
}
