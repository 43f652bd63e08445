package store

import "context"

// Locker guards the load-mutate-save cycle of a Unit.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// MutexLocker serializes writers inside one process. Unlike sync.Mutex,
// waiting for it can be abandoned through ctx.
type MutexLocker struct {
	ch chan struct{}
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{ch: make(chan struct{}, 1)}
}

func (l *MutexLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.ch <- struct{}{}:
		return func() { <-l.ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
