package todo

import (
	"time"

	"github.com/google/uuid"
)

// Todo is a single item owned by exactly one user. OwnerID is set from the
// creator's token and never changes afterwards.
type Todo struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Content   string    `json:"content"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateInput carries a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Content   *string `json:"content,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (in UpdateInput) empty() bool {
	return in.Content == nil && in.Completed == nil
}
