package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"CandyShop/pkg/kit"
)

type documentRow struct {
	ID        int    `gorm:"primaryKey;autoIncrement:false"`
	Body      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (documentRow) TableName() string { return "documents" }

// SQLiteStore keeps the document as a single row in a SQLite database.
type SQLiteStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func OpenSQLite(path string, log *zap.Logger) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return kit.Storage("sqlite handle", err)
	}
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		if err := sqlDB.PingContext(ctx); err != nil {
			return kit.Storage("sqlite ping", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Load(ctx context.Context) (*Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).First(&row, documentRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		d := NewDocument()
		if err := s.Save(ctx, d); err != nil {
			return d, err
		}
		s.log.Info("document created", zap.String("backend", "sqlite"))
		return d, nil
	}
	if err != nil {
		s.log.Error("read document failed", zap.Error(err))
		return fallback("read document", err)
	}

	d, err := decode(row.Body)
	if err != nil {
		s.log.Error("parse document failed", zap.Error(err))
		return fallback("parse document", err)
	}
	return d, nil
}

func (s *SQLiteStore) Save(ctx context.Context, d *Document) error {
	b, err := encode(d)
	if err != nil {
		return err
	}

	row := documentRow{ID: documentRowID, Body: b, UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		s.log.Error("write document failed", zap.Error(err))
		return kit.Storage("write document", err)
	}
	return nil
}
