package user

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity record. ID is the only value ever placed in a token;
// Email is used for login lookup only.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
