package port

import (
	"context"

	"github.com/rl1809/banko/internal/core/domain"
)

type SessionRepository interface {
	// Create stores the principal under a fresh token
	Create(ctx context.Context, principal domain.Principal) (string, error)

	// Principal resolves a token, returning domain.Anonymous for unknown tokens
	Principal(ctx context.Context, token string) (domain.Principal, error)

	Delete(ctx context.Context, token string) error
}
