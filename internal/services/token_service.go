package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the worker handle in "data", next to iat/exp.
type Claims struct {
	Data string `json:"data"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(claim string) (string, time.Time, error)
	Verify(token string) (string, error)
}

type tokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type TokenOption func(*tokenService)

// WithClock replaces time.Now for issuance and validation.
func WithClock(now func() time.Time) TokenOption {
	return func(s *tokenService) { s.now = now }
}

func NewTokenService(key []byte, ttl time.Duration, opts ...TokenOption) TokenService {
	s := &tokenService{key: key, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *tokenService) Issue(claim string) (string, time.Time, error) {
	if claim == "" {
		return "", time.Time{}, errors.New("empty token claim")
	}
	iat := s.now()
	exp := iat.Add(s.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Data: claim,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (s *tokenService) Verify(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.key, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.Data == "" {
		return "", ErrTokenInvalid
	}
	return claims.Data, nil
}
