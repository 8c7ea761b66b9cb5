package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AuthService hashes and checks worker passwords.
type AuthService interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, digest string) bool
}

type authService struct {
	cost int
}

func NewAuthService(cost int) AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &authService{cost: cost}
}

func (s *authService) HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *authService) CheckPassword(password, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
