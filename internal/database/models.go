package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the users table row.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// Todo is the todos table row. OwnerID is the subject id taken from the
// creator's token and never changes.
type Todo struct {
	bun.BaseModel `bun:"table:todos,alias:t"`

	ID        uuid.UUID `bun:"id,pk"`
	OwnerID   uuid.UUID `bun:"owner_id,notnull"`
	Content   string    `bun:"content,notnull"`
	Completed bool      `bun:"completed,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
