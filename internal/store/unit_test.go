package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit_UpdateSaves(t *testing.T) {
	ms := NewMemStore()
	u := NewUnit(ms, nil, nil)

	err := u.Update(context.Background(), func(d *Document) error {
		d.Products = append(d.Products, Product{ID: 1, Stock: 3})
		return nil
	})
	require.NoError(t, err)

	d, _ := ms.Load(context.Background())
	assert.Len(t, d.Products, 1)
	assert.Equal(t, 1, ms.Saves())
}

func TestUnit_UpdateErrorWritesNothing(t *testing.T) {
	ms := NewMemStoreWith(&Document{Products: []Product{{ID: 1, Stock: 3}}})
	u := NewUnit(ms, nil, nil)
	boom := errors.New("boom")

	err := u.Update(context.Background(), func(d *Document) error {
		d.Products[0].Stock = 0
		return boom
	})
	require.ErrorIs(t, err, boom)

	d, _ := ms.Load(context.Background())
	assert.Equal(t, 3, d.Products[0].Stock)
	assert.Zero(t, ms.Saves())
}

type failingStore struct{ *MemStore }

func (s *failingStore) Load(ctx context.Context) (*Document, error) {
	return fallback("read document", errors.New("disk gone"))
}

func TestUnit_UpdateSkipsFallbackDocument(t *testing.T) {
	fs := &failingStore{MemStore: NewMemStore()}
	u := NewUnit(fs, nil, nil)

	called := false
	err := u.Update(context.Background(), func(d *Document) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Zero(t, fs.Saves())
}

func TestUnit_ViewServesFallback(t *testing.T) {
	u := NewUnit(&failingStore{MemStore: NewMemStore()}, nil, nil)

	err := u.View(context.Background(), func(d *Document) error {
		assert.Empty(t, d.Products)
		return nil
	})
	assert.NoError(t, err)
}

func TestUnit_UpdatesAreSerialized(t *testing.T) {
	ms := NewMemStoreWith(&Document{Products: []Product{{ID: 1, Stock: 0}}})
	u := NewUnit(ms, NewMutexLocker(), nil)

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = u.Update(context.Background(), func(d *Document) error {
				d.Products[0].Stock++
				return nil
			})
		}()
	}
	wg.Wait()

	d, _ := ms.Load(context.Background())
	assert.Equal(t, workers, d.Products[0].Stock)
}

func TestMutexLocker_HonoursContext(t *testing.T) {
	l := NewMutexLocker()
	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
