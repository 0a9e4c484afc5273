package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a domain entity representing a system user. The user id is
// also the scope partitioning the job catalog and ledger to this user's
// data set.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Scope is the catalog/history partition key of this user.
func (u User) Scope() string { return u.ID.String() }
