package store

import (
	"context"
	"sync"
)

// MemStore keeps the document in process memory. Every Load returns an
// independent copy, the same contract the persistent stores give.
type MemStore struct {
	mu    sync.RWMutex
	doc   *Document
	saves int

	// FailSave, when set, is returned by Save instead of storing.
	FailSave error
}

func NewMemStore() *MemStore {
	return &MemStore{doc: NewDocument()}
}

func NewMemStoreWith(d *Document) *MemStore {
	c := d.Clone()
	c.normalize()
	return &MemStore{doc: c}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Load(ctx context.Context) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), nil
}

func (s *MemStore) Save(ctx context.Context, d *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSave != nil {
		return s.FailSave
	}
	c := d.Clone()
	c.normalize()
	s.doc = c
	s.saves++
	return nil
}

// Saves reports how many successful saves happened.
func (s *MemStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
