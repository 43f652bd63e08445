package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Unit runs read-modify-write cycles over a Store. Writers are serialized
// by the Locker for the whole cycle, so validations made inside Update see
// the same state that gets saved.
type Unit struct {
	store Store
	lock  Locker
	log   *zap.Logger
}

func NewUnit(s Store, l Locker, log *zap.Logger) *Unit {
	if l == nil {
		l = NewMutexLocker()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Unit{store: s, lock: l, log: log}
}

func (u *Unit) Store() Store { return u.store }

// Update loads the document, applies fn and saves the result. If the load
// fails or fn returns an error nothing is written.
func (u *Unit) Update(ctx context.Context, fn func(d *Document) error) error {
	unlock, err := u.lock.Lock(ctx)
	if err != nil {
		return fmt.Errorf("acquire document lock: %w", err)
	}
	defer unlock()

	d, err := u.store.Load(ctx)
	if err != nil {
		return err
	}

	if err := fn(d); err != nil {
		return err
	}

	return u.store.Save(ctx, d)
}

// View loads the document for reading. A failed load is logged and fn
// receives the store's fallback document instead.
func (u *Unit) View(ctx context.Context, fn func(d *Document) error) error {
	d, err := u.store.Load(ctx)
	if err != nil {
		if d == nil {
			return err
		}
		u.log.Warn("serving fallback document", zap.Error(err))
	}
	return fn(d)
}
