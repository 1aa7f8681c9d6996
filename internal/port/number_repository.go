package port

import (
	"context"
	"errors"
	"time"

	"github.com/rl1809/banko/internal/core/domain"
)

// ErrDuplicateValue is returned by Append when the value is already stored.
var ErrDuplicateValue = errors.New("value already drawn")

type NumberRepository interface {
	// Append stores a newly drawn value and returns its sequence id.
	// Uniqueness is checked by the engine; adapters backed by a unique
	// constraint report collisions as ErrDuplicateValue.
	Append(ctx context.Context, value int) (int64, error)

	// AllDrawn returns every drawn number ordered by id ascending
	AllDrawn(ctx context.Context) ([]domain.DrawnNumber, error)

	// DrawnBetween returns numbers drawn in [from, to), ordered by id ascending
	DrawnBetween(ctx context.Context, from, to time.Time) ([]domain.DrawnNumber, error)
}
