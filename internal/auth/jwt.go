package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtClaims serialises as {"subject":{"id":"..."},"exp":1700000000}.
type jwtClaims struct {
	Subject TokenSubject `json:"subject"`
	jwt.RegisteredClaims
}

// JWTService signs tokens with HMAC-SHA256 over a shared secret.
type JWTService struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewJWTService(secret []byte, duration time.Duration) (*JWTService, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("token duration must be positive")
	}

	return &JWTService{
		secret:   secret,
		duration: duration,
		now:      time.Now,
	}, nil
}

// CreateToken issues a token for subjectID that expires after the configured duration.
func (s *JWTService) CreateToken(subjectID uuid.UUID) (string, error) {
	claims := jwtClaims{
		Subject: TokenSubject{ID: subjectID.String()},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.duration)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}

// VerifyToken checks signature and expiry and returns the embedded subject.
func (s *JWTService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	var claims jwtClaims

	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformedToken
		}
	}

	subjectID, err := parseSubject(claims.Subject)
	if err != nil {
		return nil, err
	}

	return &TokenClaims{
		SubjectID: subjectID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
