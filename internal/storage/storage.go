package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lomedigitalschool/kotiz-web/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Persistence slot keys. Each slot holds one JSON document.
const (
	SlotCagnotte       = "cagnotte"
	SlotContributions  = "contributions"
	SlotCagnottes      = "cagnottes"
	SlotLocalCagnottes = "localCagnottes"
	// SlotToken is written by the auth layer; this module only reads it.
	SlotToken = "token"
)

// SlotStore is the durable key-value boundary the state store persists
// through. Load never fails: a missing slot or corrupt document leaves dest
// untouched and reports false.
type SlotStore interface {
	Load(ctx context.Context, key string, dest any) bool
	Save(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Token(ctx context.Context) string
	Close()
}

// Compile-time check: *Service must satisfy SlotStore.
var _ SlotStore = (*Service)(nil)

// Service is the SQLite-backed slot store.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite slot database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	return service, nil
}

func (s *Service) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close slot database", zap.Error(err))
	}
}

// Load deserializes the document stored under key into dest. An absent slot
// or a document that no longer parses reports false and leaves dest as the
// caller's fallback.
func (s *Service) Load(ctx context.Context, key string, dest any) bool {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			zap.L().Warn("Slot read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		zap.L().Warn("Discarding corrupt slot document",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	return true
}

func (s *Service) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("unable to serialize slot %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(raw))
	if err != nil {
		return fmt.Errorf("unable to write slot %s: %w", key, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("unable to delete slot %s: %w", key, err)
	}
	return nil
}

// Clear removes every slot. Used on logout.
func (s *Service) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots`); err != nil {
		return fmt.Errorf("unable to clear slots: %w", err)
	}
	return nil
}

// Token returns the bearer token the auth layer persisted, or "" when logged
// out.
func (s *Service) Token(ctx context.Context) string {
	var token string
	if s.Load(ctx, SlotToken, &token) {
		return token
	}
	return ""
}
