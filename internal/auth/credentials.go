package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/redmonkez12/go-todo-auth/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrInvalidEmailFormat = errors.New("please enter a valid email address")
)

const (
	MinPasswordLength = 6

	defaultOperationTimeout = 5 * time.Second
)

// Deliberately loose: anything@anything.anything.
var emailPattern = regexp.MustCompile(`^.+@.+\..+$`)

// UserStore is the persistence the credential store needs.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Credentials owns user records and password verification.
type Credentials struct {
	users   UserStore
	hasher  PasswordHasher
	timeout time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentials(users UserStore, hasher PasswordHasher, timeout time.Duration) *Credentials {
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &Credentials{
		users:   users,
		hasher:  hasher,
		timeout: timeout,
	}
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the input, hashes the password and stores a new user.
// Returns user.ErrDuplicateEmail when the address is taken.
func (c *Credentials) Register(ctx context.Context, email, password string) (*user.User, error) {
	email = NormalizeEmail(email)
	if err := validateRegistration(email, password); err != nil {
		return nil, err
	}

	// cheap conflict check before paying for a hash; the unique index still decides races
	if _, err := c.lookup(ctx, email); err == nil {
		return nil, user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := c.hash(ctx, password)
	if err != nil {
		return nil, err
	}

	createCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	newUser, err := c.users.Create(createCtx, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Authenticate returns the user owning email if password matches. Unknown
// email and wrong password are indistinguishable to the caller.
func (c *Credentials) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	existing, err := c.lookup(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// burn comparable time so response latency does not reveal the miss
			if _, verr := c.verify(ctx, c.dummy(), password); verr != nil {
				return nil, verr
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := c.verify(ctx, existing.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return existing, nil
}

func validateRegistration(email, password string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmailFormat
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (c *Credentials) lookup(ctx context.Context, email string) (*user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.users.GetByEmail(ctx, email)
}

type hashResult struct {
	hash string
	err  error
}

// hash runs the hasher off the request goroutine so a deadline can abandon it.
// The plaintext copy is zeroed once the hasher is done with it.
func (c *Credentials) hash(ctx context.Context, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	pw := []byte(password)
	done := make(chan hashResult, 1)
	go func() {
		defer clear(pw)
		h, err := c.hasher.Hash(pw)
		done <- hashResult{hash: h, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("failed to hash password: %w", res.err)
		}
		return res.hash, nil
	case <-ctx.Done():
		return "", fmt.Errorf("password hashing: %w", ctx.Err())
	}
}

func (c *Credentials) verify(ctx context.Context, encodedHash, password string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	pw := []byte(password)
	done := make(chan bool, 1)
	go func() {
		defer clear(pw)
		done <- c.hasher.Verify(encodedHash, pw)
	}()

	select {
	case ok := <-done:
		return ok, nil
	case <-ctx.Done():
		return false, fmt.Errorf("password verification: %w", ctx.Err())
	}
}

func (c *Credentials) dummy() string {
	c.dummyOnce.Do(func() {
		h, err := c.hasher.Hash([]byte("not-a-real-password"))
		if err == nil {
			c.dummyHash = h
		}
	})
	return c.dummyHash
}
