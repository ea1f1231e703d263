package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
)

func newAuthService(t *testing.T) (*service.AuthService, *service.TokenService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	tokens := newTokenService(t)
	auth := service.NewAuthService(repository.NewUserRepository(db), tokens, testValidator(), testLogger())

	return auth, tokens, db
}

func TestLoginIssuesTokenPair(t *testing.T) {
	auth, _, db := newAuthService(t)
	school := seedSchool(t, db, "Green Hills")
	user := seedUser(t, db, "teacher@school.test", "password123", models.RoleTeacher, &school.ID)

	pair, err := auth.Login(context.Background(), dto.LoginRequest{
		Email:    "teacher@school.test",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, user.ID, pair.User.ID)
	assert.Equal(t, models.RoleTeacher, pair.User.Role)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.NotNil(t, reloaded.LastLogin)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, _, db := newAuthService(t)
	school := seedSchool(t, db, "Green Hills")
	seedUser(t, db, "teacher@school.test", "password123", models.RoleTeacher, &school.ID)

	_, err := auth.Login(context.Background(), dto.LoginRequest{
		Email:    "teacher@school.test",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@school.test",
		Password: "password123",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	auth, _, db := newAuthService(t)
	school := seedSchool(t, db, "Green Hills")
	user := seedUser(t, db, "student@school.test", "password123", models.RoleStudent, &school.ID)
	require.NoError(t, db.Model(&user).Update("is_active", false).Error)

	_, err := auth.Login(context.Background(), dto.LoginRequest{
		Email:    "student@school.test",
		Password: "password123",
	})
	assert.ErrorIs(t, err, service.ErrAccountDisabled)
}

func TestLoginRejectsMembersOfDisabledSchool(t *testing.T) {
	auth, _, db := newAuthService(t)
	school := seedSchool(t, db, "Green Hills")
	seedUser(t, db, "student@school.test", "password123", models.RoleStudent, &school.ID)
	require.NoError(t, db.Model(&school).Update("is_active", false).Error)

	_, err := auth.Login(context.Background(), dto.LoginRequest{
		Email:    "student@school.test",
		Password: "password123",
	})
	assert.ErrorIs(t, err, service.ErrAccountDisabled)
}

func TestRefreshRotatesAndRevokesOldToken(t *testing.T) {
	auth, _, db := newAuthService(t)
	school := seedSchool(t, db, "Green Hills")
	seedUser(t, db, "teacher@school.test", "password123", models.RoleTeacher, &school.ID)

	ctx := context.Background()
	pair, err := auth.Login(ctx, dto.LoginRequest{Email: "teacher@school.test", Password: "password123"})
	require.NoError(t, err)

	rotated, err := auth.Refresh(ctx, dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The spent token cannot be replayed.
	_, err = auth.Refresh(ctx, dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// The rotated token still works.
	_, err = auth.Refresh(ctx, dto.RefreshRequest{RefreshToken: rotated.RefreshToken})
	assert.NoError(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	auth, _, db := newAuthService(t)
	school := seedSchool(t, db, "Green Hills")
	seedUser(t, db, "teacher@school.test", "password123", models.RoleTeacher, &school.ID)

	ctx := context.Background()
	pair, err := auth.Login(ctx, dto.LoginRequest{Email: "teacher@school.test", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, dto.LogoutRequest{RefreshToken: pair.RefreshToken}))

	_, err = auth.Refresh(ctx, dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	auth, _, db := newAuthService(t)
	school := seedSchool(t, db, "Green Hills")
	user := seedUser(t, db, "teacher@school.test", "password123", models.RoleTeacher, &school.ID)

	ctx := context.Background()
	err := auth.ChangePassword(ctx, user.ID, dto.ChangePasswordRequest{
		OldPassword:        "wrong",
		NewPassword:        "newpassword1",
		NewPasswordConfirm: "newpassword1",
	})
	assert.ErrorIs(t, err, service.ErrPasswordMismatch)

	require.NoError(t, auth.ChangePassword(ctx, user.ID, dto.ChangePasswordRequest{
		OldPassword:        "password123",
		NewPassword:        "newpassword1",
		NewPasswordConfirm: "newpassword1",
	}))

	_, err = auth.Login(ctx, dto.LoginRequest{Email: "teacher@school.test", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestPasswordResetIsBlindAndOneTime(t *testing.T) {
	auth, tokens, db := newAuthService(t)
	school := seedSchool(t, db, "Green Hills")
	user := seedUser(t, db, "student@school.test", "password123", models.RoleStudent, &school.ID)

	ctx := context.Background()

	// Unknown emails succeed silently.
	require.NoError(t, auth.RequestPasswordReset(ctx, dto.PasswordResetRequest{Email: "ghost@school.test"}))

	// A real token round-trips.
	token, err := tokens.IssueResetToken(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, auth.ConfirmPasswordReset(ctx, dto.PasswordResetConfirmRequest{
		Token:              token,
		NewPassword:        "resetpassword",
		NewPasswordConfirm: "resetpassword",
	}))

	_, err = auth.Login(ctx, dto.LoginRequest{Email: "student@school.test", Password: "resetpassword"})
	assert.NoError(t, err)

	err = auth.ConfirmPasswordReset(ctx, dto.PasswordResetConfirmRequest{
		Token:              token,
		NewPassword:        "anotherpassword",
		NewPasswordConfirm: "anotherpassword",
	})
	assert.ErrorIs(t, err, service.ErrResetTokenInvalid)
}
