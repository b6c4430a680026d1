package auth

import (
	authmw "datamover/pkg/platform/middleware/auth"
)

// JWTAdapter bridges JWTService to the middleware's validator interface so
// the middleware package never depends on jwt internals.
type JWTAdapter struct {
	service *JWTService
}

func NewJWTAdapter(service *JWTService) *JWTAdapter {
	return &JWTAdapter{service: service}
}

func (a *JWTAdapter) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.Claims{UserID: claims.UserID}, nil
}
