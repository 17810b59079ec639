package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-auth/internal/config"
)

// Verification failures. The gate collapses all of them into a single 401;
// they stay distinct for logs and the operator CLI.
var (
	ErrMalformedToken   = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpiredToken     = errors.New("token has expired")
)

// TokenSubject is the "subject" claim object.
type TokenSubject struct {
	ID string `json:"id"`
}

// TokenClaims is the verified content of a token.
type TokenClaims struct {
	SubjectID uuid.UUID
	ExpiresAt time.Time
}

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
// Any two processes holding the same secret can verify each other's tokens.
type TokenService interface {
	CreateToken(subjectID uuid.UUID) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// NewTokenService builds the codec selected by configuration.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	switch cfg.TokenFormat {
	case config.TokenFormatJWT, "":
		return NewJWTService(cfg.TokenSecret, cfg.TokenDuration)
	case config.TokenFormatPaseto:
		return NewPasetoService(cfg.TokenSecret, cfg.TokenDuration)
	default:
		return nil, fmt.Errorf("unsupported token format %q", cfg.TokenFormat)
	}
}

func parseSubject(sub TokenSubject) (uuid.UUID, error) {
	if sub.ID == "" {
		return uuid.Nil, ErrMalformedToken
	}
	id, err := uuid.Parse(sub.ID)
	if err != nil {
		return uuid.Nil, ErrMalformedToken
	}
	return id, nil
}
