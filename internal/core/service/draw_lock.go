package service

import "context"

// LocalDrawLock serializes draws within a single process.
type LocalDrawLock struct {
	ch chan struct{}
}

func NewLocalDrawLock() *LocalDrawLock {
	return &LocalDrawLock{ch: make(chan struct{}, 1)}
}

func (l *LocalDrawLock) Lock(ctx context.Context) (func(), error) {
	select {
	case l.ch <- struct{}{}:
		return func() { <-l.ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
