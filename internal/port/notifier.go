package port

import (
	"context"

	"github.com/rl1809/banko/internal/core/domain"
)

type Notifier interface {
	// VerifyAndNotify asks a human verifier to check the claim. A nil error
	// means the request was accepted for verification.
	VerifyAndNotify(ctx context.Context, claimantName string, claimType domain.ClaimType) error
}
