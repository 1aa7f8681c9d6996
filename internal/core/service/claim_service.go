package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rl1809/banko/internal/core/domain"
	"github.com/rl1809/banko/internal/port"
)

type ClaimService struct {
	claims   port.ClaimRepository
	notifier port.Notifier
	log      *zap.Logger
}

func NewClaimService(claims port.ClaimRepository, notifier port.Notifier, log *zap.Logger) *ClaimService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClaimService{claims: claims, notifier: notifier, log: log}
}

// Submit asks the notifier to have the claim verified and records it only
// when that request succeeds. Notifier errors are not retried.
func (s *ClaimService) Submit(ctx context.Context, name string, claimType domain.ClaimType) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: name is required", ErrInvalidClaim)
	}
	if !claimType.Valid() {
		return 0, fmt.Errorf("%w: unknown claim type %d", ErrInvalidClaim, int(claimType))
	}

	if err := s.notifier.VerifyAndNotify(ctx, name, claimType); err != nil {
		s.log.Warn("claim notification failed", zap.String("name", name), zap.Stringer("type", claimType), zap.Error(err))
		return 0, &NotificationError{Err: err}
	}

	id, err := s.claims.RecordClaim(ctx, name, claimType)
	if err != nil {
		s.log.Error("record claim failed", zap.String("name", name), zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.log.Info("claim recorded", zap.Int64("id", id), zap.String("name", name), zap.Stringer("type", claimType))
	return id, nil
}

func (s *ClaimService) List(ctx context.Context) ([]domain.Claim, error) {
	claims, err := s.claims.ListClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return claims, nil
}
