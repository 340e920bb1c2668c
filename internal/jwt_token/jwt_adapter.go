package jwttoken

import (
	"podium/internal/platform/middleware"
)

// JWTServiceAdapter exposes JWTService through the middleware validator port.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{Subject: claims.Subject, Role: claims.Role}, nil
}
