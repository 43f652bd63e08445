package store

import (
	"context"
	"encoding/json"

	"CandyShop/pkg/kit"
)

// Store loads and saves the whole Document. Implementations never perform
// partial reads or writes.
type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, d *Document) error
	Ping(ctx context.Context) error
}

func encode(d *Document) ([]byte, error) {
	d.normalize()
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, kit.Storage("encode document", err)
	}
	return b, nil
}

func decode(raw []byte) (*Document, error) {
	d := NewDocument()
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, kit.Storage("decode document", err)
	}
	d.normalize()
	return d, nil
}

// fallback is returned alongside a storage error so read-only callers can
// keep serving an empty view.
func fallback(msg string, err error) (*Document, error) {
	return NewDocument(), kit.Storage(msg, err)
}
