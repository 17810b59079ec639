package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-todo-auth/internal/database"
)

var ErrNotFound = errors.New("todo not found")

// Repository handles todo persistence. Every statement that touches an
// existing row filters on both id and owner_id, so a row belonging to someone
// else is indistinguishable from a missing one.
type Repository struct {
	db  bun.IDB
	now func() time.Time
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new, not yet completed todo for ownerID.
func (r *Repository) Create(ctx context.Context, ownerID uuid.UUID, content string) (*Todo, error) {
	now := r.now()
	dbTodo := &database.Todo{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Content:   content,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.db.NewInsert().Model(dbTodo).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

// ListByOwner returns all todos of ownerID, oldest first. Never nil.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Todo, error) {
	var rows []database.Todo
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", ownerID).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]Todo, 0, len(rows))
	for i := range rows {
		todos = append(todos, *mapDBTodoToModel(&rows[i]))
	}
	return todos, nil
}

// GetByIDAndOwner retrieves one todo if it exists and belongs to ownerID.
func (r *Repository) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*Todo, error) {
	dbTodo := new(database.Todo)
	err := r.db.NewSelect().
		Model(dbTodo).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

// Update applies the supplied fields in one statement scoped to the owner and
// returns the row as stored afterwards.
func (r *Repository) Update(ctx context.Context, id, ownerID uuid.UUID, in UpdateInput) (*Todo, error) {
	q := r.db.NewUpdate().
		Model((*database.Todo)(nil)).
		Set("updated_at = ?", r.now()).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID)

	if in.Content != nil {
		q = q.Set("content = ?", *in.Content)
	}
	if in.Completed != nil {
		q = q.Set("completed = ?", *in.Completed)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return nil, err
	}

	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// Delete removes the todo if it belongs to ownerID.
func (r *Repository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*database.Todo)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapDBTodoToModel(dbt *database.Todo) *Todo {
	return &Todo{
		ID:        dbt.ID,
		OwnerID:   dbt.OwnerID,
		Content:   dbt.Content,
		Completed: dbt.Completed,
		CreatedAt: dbt.CreatedAt,
		UpdatedAt: dbt.UpdatedAt,
	}
}
