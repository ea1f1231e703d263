package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

// TokenBlacklist reports whether a token id has been revoked.
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTProtected returns a middleware that validates JWT bearer tokens and
// populates user_id, user_role and school_id locals from the claims. Tokens
// whose jti appears in the blacklist are rejected.
func JWTProtected(secret string, blacklist TokenBlacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if tokenType, _ := claims["token_type"].(string); tokenType != "" && tokenType != "access" {
			return utils.SendError(c, fiber.StatusUnauthorized, "access token required")
		}

		if blacklist != nil {
			if jti, _ := claims["jti"].(string); jti != "" {
				revoked, err := blacklist.IsBlacklisted(c.Context(), jti)
				if err == nil && revoked {
					return utils.SendError(c, fiber.StatusUnauthorized, "token revoked")
				}
			}
		}

		if userID := extractUserIDFromClaims(claims); userID != nil {
			c.Locals("user_id", *userID)
		}
		if role := extractRoleFromClaims(claims); role != "" {
			c.Locals("user_role", role)
		}
		if schoolID := extractSchoolIDFromClaims(claims); schoolID != nil {
			c.Locals("school_id", *schoolID)
		}

		return c.Next()
	}
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeID(value); err == nil {
				return &normalized
			}
		}
	}

	return nil
}

func extractSchoolIDFromClaims(claims jwt.MapClaims) *uint {
	if value, ok := claims["school_id"]; ok && value != nil {
		if normalized, err := normalizeID(value); err == nil {
			return &normalized
		}
	}
	return nil
}

func normalizeID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func extractRoleFromClaims(claims jwt.MapClaims) string {
	if value, ok := claims["role"]; ok {
		if role, isString := value.(string); isString {
			return strings.ToUpper(strings.TrimSpace(role))
		}
	}
	return ""
}
