package services

import (
	"time"

	"snack-shop/models"
	"snack-shop/utils"
)

// AuthService unlocks the owner area with the venue passcode. The
// passcode is held only as an argon2 hash.
type AuthService struct {
	passcodeHash string
	secret       string
	expiry       time.Duration
}

func NewAuthService(passcode, secret string, expiry time.Duration) (*AuthService, error) {
	hash, err := utils.HashPassword(passcode)
	if err != nil {
		return nil, err
	}
	return &AuthService{passcodeHash: hash, secret: secret, expiry: expiry}, nil
}

func (s *AuthService) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	valid, err := utils.VerifyPassword(s.passcodeHash, req.Passcode)
	if err != nil || !valid {
		return nil, models.ErrUnauthorized
	}

	token, err := utils.GenerateToken(s.secret, utils.RoleOwner, s.expiry)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.expiry.Seconds()),
	}, nil
}

func (s *AuthService) Authorize(token string) (*utils.Claims, error) {
	claims, err := utils.ValidateToken(s.secret, token)
	if err != nil {
		return nil, models.ErrUnauthorized
	}
	if claims.Role != utils.RoleOwner {
		return nil, models.ErrUnauthorized
	}
	return claims, nil
}
