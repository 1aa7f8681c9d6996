package port

import (
	"context"

	"github.com/rl1809/banko/internal/core/domain"
)

type ClaimRepository interface {
	// RecordClaim appends a verified claim and returns its id
	RecordClaim(ctx context.Context, name string, claimType domain.ClaimType) (int64, error)

	// ListClaims returns all claims, most recent first
	ListClaims(ctx context.Context) ([]domain.Claim, error)
}
