// Package store owns the shared SQLite handle. One database backs all
// modules so foreign keys and the status-update transaction span profiles,
// tasks, and history in a single engine. The handle is opened once in main
// and injected into each module's constructor.
package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KhaledAOsman/empower-task/domain/profile"
	"github.com/KhaledAOsman/empower-task/domain/task"
)

// Store wraps the shared GORM handle.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path, applies the
// engine pragmas, and migrates the schema. The connection pool is capped at
// one connection: SQLite allows a single writer, and a pool of one keeps
// write transactions strictly serialized while readers see committed
// snapshots through WAL.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&profile.Profile{}, &task.Task{}, &task.HistoryEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// dsn builds the SQLite DSN with the pragmas the engine needs: enforced
// foreign keys, a busy timeout for lock contention, and WAL journaling so
// readers never block on the writer.
func dsn(path string) string {
	if path == ":memory:" {
		// The pool cap of one keeps a lone in-memory database alive.
		return "file::memory:?_foreign_keys=on&_busy_timeout=5000"
	}
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
}

// DB returns the shared GORM handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping verifies the underlying connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
