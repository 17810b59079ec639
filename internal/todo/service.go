package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-auth/internal/logging"
)

var (
	ErrContentRequired = errors.New("todo content is required")
	ErrNoUpdateFields  = errors.New("no update data provided (content or completed status)")
)

const (
	defaultOperationTimeout = 5 * time.Second
	cacheTimeout            = 500 * time.Millisecond
)

// Service is the ownership-scoped todo store. The owner always comes from a
// verified token, never from the request body.
type Service struct {
	repo    *Repository
	cache   ListCache
	logger  *logging.Logger
	timeout time.Duration
}

func NewService(repo *Repository, cache ListCache, logger *logging.Logger, timeout time.Duration) *Service {
	if cache == nil {
		cache = NopListCache{}
	}
	if logger == nil {
		logger = logging.NewDiscard()
	}
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &Service{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		timeout: timeout,
	}
}

// Create stores a new todo for ownerID. Content is trimmed first.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, content string) (*Todo, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.repo.Create(ctx, ownerID, content)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	return created, nil
}

// List returns every todo of ownerID, oldest first, serving from the cache
// when it holds the current generation.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]Todo, error) {
	cached, generation, hit, cacheErr := s.cacheGet(ctx, ownerID)
	if cacheErr != nil {
		s.logger.Warn("todo list cache read failed", "owner_id", ownerID, "error", cacheErr)
	}
	if hit {
		return cached, nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	todos, err := s.repo.ListByOwner(dbCtx, ownerID)
	if err != nil {
		return nil, err
	}

	// a failed read leaves the generation unknown, so don't fill
	if cacheErr == nil {
		s.cacheSet(ctx, ownerID, generation, todos)
	}
	return todos, nil
}

// Update applies in to the todo identified by id if ownerID owns it.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (*Todo, error) {
	if in.empty() {
		return nil, ErrNoUpdateFields
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, ErrContentRequired
		}
		in.Content = &content
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	updated, err := s.repo.Update(ctx, id, ownerID, in)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	return updated, nil
}

// Delete removes the todo identified by id if ownerID owns it.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s *Service) cacheGet(ctx context.Context, ownerID uuid.UUID) ([]Todo, int64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	todos, generation, hit, err := s.cache.Get(ctx, ownerID)
	if err != nil {
		return nil, -1, false, fmt.Errorf("cache get: %w", err)
	}
	return todos, generation, hit, nil
}

func (s *Service) cacheSet(ctx context.Context, ownerID uuid.UUID, generation int64, todos []Todo) {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	if err := s.cache.Set(ctx, ownerID, generation, todos); err != nil {
		s.logger.Warn("todo list cache fill failed", "owner_id", ownerID, "error", err)
	}
}

// invalidate runs after a committed write, so it must not be cut short by the
// caller going away.
func (s *Service) invalidate(ctx context.Context, ownerID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()

	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.logger.Warn("todo list cache invalidation failed", "owner_id", ownerID, "error", err)
	}
}
