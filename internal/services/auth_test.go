package services

import (
	"testing"

	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/internal/utils"
	"github.com/quickbites/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func TestSignupAndLogin(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testJWTSecret)

	resp, err := auth.Signup(SignupRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "password123",
		Phone:    "9800000001",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)
	assert.NotEmpty(t, resp.Tokens.AccessToken)

	claims, err := utils.ValidateToken(resp.Tokens.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, string(utils.AccessToken), claims.Type)

	// Duplicate email rejected.
	_, err = auth.Signup(SignupRequest{
		Name: "Asha 2", Email: "asha@example.com", Password: "password123", Phone: "9800000002",
	})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	login, err := auth.Login(LoginRequest{Email: "asha@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Tokens.RefreshToken)

	_, err = auth.Login(LoginRequest{Email: "asha@example.com", Password: "wrongpassword"})
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
}

func TestSignupRejectsAdminRole(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testJWTSecret)

	_, err := auth.Signup(SignupRequest{
		Name: "Eve", Email: "eve@example.com", Password: "password123",
		Phone: "9800000003", Role: models.RoleAdmin,
	})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))
}

func TestRefreshRotatesToken(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testJWTSecret)

	resp, err := auth.Signup(SignupRequest{
		Name: "Ravi", Email: "ravi@example.com", Password: "password123", Phone: "9800000004",
	})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.Tokens.AccessToken, "")
	assert.NotEmpty(t, refreshed.Tokens.RefreshToken)

	// The old refresh token is revoked after rotation.
	_, err = auth.Refresh(RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))

	// An access token is never accepted as a refresh token.
	_, err = auth.Refresh(RefreshRequest{RefreshToken: refreshed.Tokens.AccessToken})
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
}

func TestVerifyMobile(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testJWTSecret)

	resp, err := auth.Signup(SignupRequest{
		Name: "Meera", Email: "meera@example.com", Password: "password123", Phone: "9800000005",
	})
	require.NoError(t, err)
	require.False(t, resp.User.IsVerified)

	user, err := auth.VerifyMobile(resp.User.ID)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)

	_, err = auth.VerifyMobile(99999)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}
