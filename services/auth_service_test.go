package services

import (
	"testing"
	"time"

	"snack-shop/models"
	"snack-shop/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceLogin(t *testing.T) {
	auth, err := NewAuthService("8888", "test-secret", time.Hour)
	require.NoError(t, err)

	resp, err := auth.Login(models.LoginRequest{Passcode: "8888"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := auth.Authorize(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, utils.RoleOwner, claims.Role)

	_, err = auth.Login(models.LoginRequest{Passcode: "1234"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = auth.Authorize("not-a-token")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthServiceRejectsForeignTokens(t *testing.T) {
	auth, err := NewAuthService("8888", "test-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := utils.GenerateToken("other-secret", utils.RoleOwner, time.Hour)
	require.NoError(t, err)
	_, err = auth.Authorize(foreign)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	guest, err := utils.GenerateToken("test-secret", "guest", time.Hour)
	require.NoError(t, err)
	_, err = auth.Authorize(guest)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
