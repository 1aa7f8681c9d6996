package port

import "context"

type DrawLock interface {
	// Lock blocks until the draw critical section is held or ctx is done.
	// The returned function releases it.
	Lock(ctx context.Context) (unlock func(), err error)
}
