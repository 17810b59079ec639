package auth

import (
	"context"
	"fmt"

	"github.com/redmonkez12/go-todo-auth/internal/user"
)

// Service handles the identity business logic: it owns no state of its own
// beyond the credential store and the token codec.
type Service struct {
	credentials *Credentials
	tokens      TokenService
}

func NewService(credentials *Credentials, tokens TokenService) *Service {
	return &Service{
		credentials: credentials,
		tokens:      tokens,
	}
}

// Register creates a new user account and returns it with a token so the
// caller is signed in immediately.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, string, error) {
	newUser, err := s.credentials.Register(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.CreateToken(newUser.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create token: %w", err)
	}

	return newUser, token, nil
}

// Login authenticates a user and returns a fresh token. It performs no writes.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	existing, err := s.credentials.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.CreateToken(existing.ID)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	return token, nil
}
