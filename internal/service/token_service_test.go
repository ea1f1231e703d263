package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
)

func newTokenService(t *testing.T) *service.TokenService {
	t.Helper()

	return service.NewTokenService(service.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		ResetTTL:      time.Hour,
	}, newTestRedis(t), testLogger())
}

func TestTokenServiceIssueAndParse(t *testing.T) {
	tokens := newTokenService(t)
	schoolID := uint(7)
	user := models.User{ID: 42, Role: models.RoleTeacher, SchoolID: &schoolID}

	access, refresh, err := tokens.IssuePair(user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := tokens.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	require.NotNil(t, claims.SchoolID)
	assert.Equal(t, uint(7), *claims.SchoolID)
	assert.NotEmpty(t, claims.JTI)
	assert.True(t, claims.ExpiresAt.After(time.Now()))

	refreshClaims, err := tokens.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), refreshClaims.UserID)
	assert.NotEqual(t, claims.JTI, refreshClaims.JTI)
}

func TestTokenServiceRejectsWrongType(t *testing.T) {
	tokens := newTokenService(t)
	user := models.User{ID: 1, Role: models.RoleStudent}

	access, refresh, err := tokens.IssuePair(user)
	require.NoError(t, err)

	_, err = tokens.ParseAccess(refresh)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = tokens.ParseRefresh(access)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = tokens.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestTokenServiceBlacklist(t *testing.T) {
	tokens := newTokenService(t)
	ctx := context.Background()

	revoked, err := tokens.IsBlacklisted(ctx, "some-jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, tokens.Blacklist(ctx, "some-jti", time.Now().Add(time.Hour)))

	revoked, err = tokens.IsBlacklisted(ctx, "some-jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Already-expired tokens are not stored.
	require.NoError(t, tokens.Blacklist(ctx, "stale-jti", time.Now().Add(-time.Minute)))
	revoked, err = tokens.IsBlacklisted(ctx, "stale-jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenServiceResetTokenIsOneTime(t *testing.T) {
	tokens := newTokenService(t)
	ctx := context.Background()

	token, err := tokens.IssueResetToken(ctx, 99)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := tokens.ConsumeResetToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(99), userID)

	_, err = tokens.ConsumeResetToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrResetTokenInvalid)

	_, err = tokens.ConsumeResetToken(ctx, "unknown")
	assert.ErrorIs(t, err, service.ErrResetTokenInvalid)
}
