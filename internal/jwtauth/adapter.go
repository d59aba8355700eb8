package jwtauth

import (
	"tradegate/internal/platform/middleware"
)

// Adapter bridges the token service to the middleware's validator interface.
type Adapter struct {
	service *Service
}

// NewAdapter wraps a token service for middleware use.
func NewAdapter(service *Service) *Adapter {
	return &Adapter{service: service}
}

func (a *Adapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{
		UserID: claims.UserID,
		Role:   claims.Role,
		JTI:    claims.ID,
	}, nil
}
