package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/astatracker/fantacalcio-api/internal/domain/user"
)

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 session tokens. It implements both
// usecase.TokenIssuer and usecase.TokenVerifier.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

func (s *JWTService) Issue(principal user.Principal, now time.Time) (string, time.Time, error) {
	if strings.TrimSpace(principal.UserID) == "" {
		return "", time.Time{}, fmt.Errorf("principal user id is required")
	}

	expiresAt := now.Add(s.ttl)
	claims := sessionClaims{
		Username: principal.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *JWTService) Verify(raw string) (user.Principal, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return user.Principal{}, fmt.Errorf("parse session token: %w", err)
	}
	if !parsed.Valid {
		return user.Principal{}, fmt.Errorf("session token is not valid")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return user.Principal{}, fmt.Errorf("session token has no subject")
	}

	return user.Principal{
		UserID:   claims.Subject,
		Username: claims.Username,
	}, nil
}
