package model

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// JWTCustomClaims carries the user id in the standard subject claim.
type JWTCustomClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
