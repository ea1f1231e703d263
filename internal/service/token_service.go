package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

var (
	// ErrInvalidToken covers malformed, expired, or wrong-type tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrResetTokenInvalid means the password reset token is unknown or spent.
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
)

const (
	blacklistKeyPrefix = "biotutor:blacklist:"
	resetKeyPrefix     = "biotutor:pwreset:"
)

// TokenClaims is the parsed content of one of our JWTs.
type TokenClaims struct {
	UserID    uint
	Role      string
	SchoolID  *uint
	TokenType string
	JTI       string
	ExpiresAt time.Time
}

// TokenConfig carries signing material and lifetimes.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

// TokenService issues and revokes JWT pairs. Revocation and password reset
// tokens live in redis keyed by jti with a TTL matching the token lifetime.
type TokenService struct {
	cfg    TokenConfig
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTokenService constructs the token manager.
func NewTokenService(cfg TokenConfig, redisClient *redis.Client, logger zerolog.Logger) *TokenService {
	return &TokenService{
		cfg:    cfg,
		redis:  redisClient,
		logger: logger.With().Str("component", "token_service").Logger(),
	}
}

// IssuePair mints an access and refresh token for the user.
func (s *TokenService) IssuePair(user models.User) (access string, refresh string, err error) {
	now := time.Now()

	access, err = s.sign(user, "access", s.cfg.AccessSecret, now, s.cfg.AccessTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}

	refresh, err = s.sign(user, "refresh", s.cfg.RefreshSecret, now, s.cfg.RefreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}

	return access, refresh, nil
}

func (s *TokenService) sign(user models.User, tokenType, secret string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":        strconv.FormatUint(uint64(user.ID), 10),
		"role":       user.Role,
		"token_type": tokenType,
		"jti":        uuid.NewString(),
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}
	if user.SchoolID != nil {
		claims["school_id"] = *user.SchoolID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccess validates an access token and returns its claims.
func (s *TokenService) ParseAccess(tokenString string) (TokenClaims, error) {
	return s.parse(tokenString, "access", s.cfg.AccessSecret)
}

// ParseRefresh validates a refresh token and returns its claims.
func (s *TokenService) ParseRefresh(tokenString string) (TokenClaims, error) {
	return s.parse(tokenString, "refresh", s.cfg.RefreshSecret)
}

func (s *TokenService) parse(tokenString, wantType, secret string) (TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return TokenClaims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}

	if tokenType, _ := mapClaims["token_type"].(string); tokenType != wantType {
		return TokenClaims{}, ErrInvalidToken
	}

	subject, _ := mapClaims["sub"].(string)
	userID, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return TokenClaims{}, ErrInvalidToken
	}

	claims := TokenClaims{
		UserID:    uint(userID),
		TokenType: wantType,
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if jti, ok := mapClaims["jti"].(string); ok {
		claims.JTI = jti
	}
	if schoolID, ok := mapClaims["school_id"].(float64); ok {
		id := uint(schoolID)
		claims.SchoolID = &id
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return claims, nil
}

// Blacklist marks the token id as revoked until its natural expiry.
func (s *TokenService) Blacklist(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

// IsBlacklisted reports whether a token id has been revoked. Satisfies
// middleware.TokenBlacklist.
func (s *TokenService) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	count, err := s.redis.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return count > 0, nil
}

// IssueResetToken stores a one-time password reset token for the user.
func (s *TokenService) IssueResetToken(ctx context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	key := resetKeyPrefix + token

	if err := s.redis.Set(ctx, key, strconv.FormatUint(uint64(userID), 10), s.cfg.ResetTTL).Err(); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	return token, nil
}

// ConsumeResetToken resolves and deletes a reset token in one step so it
// can never be replayed.
func (s *TokenService) ConsumeResetToken(ctx context.Context, token string) (uint, error) {
	value, err := s.redis.GetDel(ctx, resetKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrResetTokenInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("consume reset token: %w", err)
	}

	userID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, ErrResetTokenInvalid
	}

	return uint(userID), nil
}
