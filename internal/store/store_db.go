package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"CandyShop/pkg/kit"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	documentRowID = 1
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore keeps the document as a single JSONB row.
type PostgresStore struct {
	db  *sql.DB
	log *zap.Logger
}

func OpenPostgres(ctx context.Context, dsn string, log *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := NewPostgresStore(db, log)
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresStore(db *sql.DB, log *zap.Logger) *PostgresStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresStore{db: db, log: log}
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		if err := s.db.PingContext(ctx); err != nil {
			return kit.Storage("postgres ping", err)
		}
		return nil
	})
}

func (s *PostgresStore) Load(ctx context.Context) (*Document, error) {
	var raw []byte
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT body
			FROM documents
			WHERE id = $1
		`, documentRowID).Scan(&raw)
	})
	if errors.Is(err, sql.ErrNoRows) {
		d := NewDocument()
		if err := s.Save(ctx, d); err != nil {
			return d, err
		}
		s.log.Info("document created", zap.String("backend", "postgres"))
		return d, nil
	}
	if err != nil {
		s.log.Error("read document failed", zap.Error(err))
		return fallback("read document", err)
	}

	d, err := decode(raw)
	if err != nil {
		s.log.Error("parse document failed", zap.Error(err))
		return fallback("parse document", err)
	}
	return d, nil
}

func (s *PostgresStore) Save(ctx context.Context, d *Document) error {
	b, err := encode(d)
	if err != nil {
		return err
	}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO documents (id, body, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (id) DO UPDATE
			SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
		`, documentRowID, b)
		return err
	})
	if err != nil {
		s.log.Error("write document failed", zap.Error(err))
		return kit.Storage("write document", err)
	}
	return nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
