package driven

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	// Save creates or updates a user
	Save(ctx context.Context, user *domain.User) error

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Delete removes a user
	Delete(ctx context.Context, id string) error

	// UpdateLastLogin stamps the last successful login
	UpdateLastLogin(ctx context.Context, id string) error
}
