package driven

import (
	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// AuthAdapter handles password hashing and token signing
type AuthAdapter interface {
	// HashPassword generates a bcrypt hash from a plaintext password
	HashPassword(password string) (string, error)

	// VerifyPassword checks if a password matches a bcrypt hash
	VerifyPassword(password, hash string) bool

	// GenerateToken creates a signed JWT from domain claims
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates a JWT and extracts domain claims
	ParseToken(token string) (*domain.TokenClaims, error)
}
