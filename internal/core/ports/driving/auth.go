package driving

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// AuthService handles authentication operations
type AuthService interface {
	// Register creates a new account and returns a logged-in session
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error)

	// Authenticate validates credentials and creates a session
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken validates a JWT token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// Logout invalidates the session behind a token
	Logout(ctx context.Context, token string) error
}
