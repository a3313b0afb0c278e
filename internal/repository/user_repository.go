package repository

import (
	"context"

	"github.com/noah-isme/coursehub-client/internal/models"
)

// UserRepository reads and creates accounts on the users service.
type UserRepository struct {
	users *Collection[models.User]
}

// NewUserRepository wraps the users collection.
func NewUserRepository(users *Collection[models.User]) *UserRepository {
	return &UserRepository{users: users}
}

// FindByEmail returns the first account with email, or nil when there is none.
// Backend failures are returned so callers never mistake an outage for "no user".
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.users.Query(ctx, Filter{"email": email})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// Create stores a new account.
func (r *UserRepository) Create(ctx context.Context, req models.NewUserRequest) (*models.User, error) {
	return r.users.Create(ctx, req)
}
