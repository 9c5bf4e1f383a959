// Package sqlite implements a durable content store backend on top of GORM
// and an embedded sqlite database file.
package sqlite

import (
	"context"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brindle-bt/brindle/errors"
	"github.com/brindle-bt/brindle/store"
)

const defaultDSN = "brindle.sqlite"

func init() {
	store.Register("sqlite", driver{})
}

type driver struct{}

func (driver) New(cfg *store.DriverConfig) (store.Store, error) {
	dsn := cfg.Params["dsn"]
	if dsn == "" {
		dsn = defaultDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&blob{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// blob is the single table this backend keeps: one row per distinct
// content address ever stored.
type blob struct {
	Digest string `gorm:"primaryKey"`
	Data   []byte
}

// Store is a content store backend persisting to an embedded sqlite
// database via GORM.
type Store struct {
	db *gorm.DB
}

func (s *Store) Put(ctx context.Context, b []byte) (string, error) {
	digest := store.Address(b)

	row := blob{Digest: digest, Data: b}
	// FirstOrCreate keys off Digest since it's the primary key; an
	// existing row is left untouched, matching Put's idempotence
	// contract.
	if err := s.db.WithContext(ctx).Where(blob{Digest: digest}).FirstOrCreate(&row).Error; err != nil {
		return "", err
	}
	return digest, nil
}

func (s *Store) Get(ctx context.Context, digest string) ([]byte, error) {
	var row blob
	err := s.db.WithContext(ctx).First(&row, "digest = ?", digest).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.NewNotFound("store: no blob at digest " + digest)
	}
	if err != nil {
		return nil, err
	}
	return row.Data, nil
}

func (s *Store) Has(ctx context.Context, digest string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&blob{}).Where("digest = ?", digest).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Delete(ctx context.Context, digest string) error {
	return s.db.WithContext(ctx).Delete(&blob{}, "digest = ?", digest).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
