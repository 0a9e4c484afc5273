package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jobassist/backend/pkg/auth"
)

// UserRepository keeps users in process memory. All job data lives in the
// external job store; this service persists nothing itself, so the user
// directory stays local to the process lifetime.
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]auth.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byEmail: make(map[string]auth.User)}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) error {
	key := strings.ToLower(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[key]; exists {
		return auth.ErrUserAlreadyExists
	}
	r.byEmail[key] = user
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return user, nil
}
