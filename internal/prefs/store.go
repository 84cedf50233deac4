// Package prefs persists per-board preference blobs as JSON in the
// application database.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andy/multitimer/internal/db"
	"github.com/andy/multitimer/internal/domain"
)

// Store manages preference blob persistence, keyed by board.
type Store interface {
	// Load returns the blob stored under key, or nil when nothing has been
	// saved yet.
	Load(ctx context.Context, key string) (*domain.Preferences, error)

	// Save stores the blob under key, replacing any previous value.
	Save(ctx context.Context, key string, p *domain.Preferences) error

	// Delete removes the blob stored under key, if any.
	Delete(ctx context.Context, key string) error
}

// SQLStore is a SQLite implementation of Store.
type SQLStore struct {
	db *db.DB
}

// NewSQLStore creates a new SQLStore
func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

// Load retrieves the preference blob for key, or returns nil if absent
func (s *SQLStore) Load(ctx context.Context, key string) (*domain.Preferences, error) {
	query := "SELECT blob FROM preferences WHERE key = ?"

	var blob string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Nothing saved yet
		}
		return nil, fmt.Errorf("failed to load preferences %q: %w", key, err)
	}

	// Decode over defaults so fields added later keep their default values
	p := domain.DefaultPreferences()
	if err := json.Unmarshal([]byte(blob), p); err != nil {
		return nil, fmt.Errorf("failed to decode preferences %q: %w", key, err)
	}

	return p, nil
}

// Save stores the preference blob for key (insert or replace)
func (s *SQLStore) Save(ctx context.Context, key string, p *domain.Preferences) error {
	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preferences %q: %w", key, err)
	}

	query := `
		INSERT OR REPLACE INTO preferences (key, blob, updated_at)
		VALUES (?, ?, datetime('now'))
	`

	if _, err := s.db.ExecContext(ctx, query, key, string(blob)); err != nil {
		return fmt.Errorf("failed to save preferences %q: %w", key, err)
	}

	return nil
}

// Delete removes the preference blob for key
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := "DELETE FROM preferences WHERE key = ?"

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete preferences %q: %w", key, err)
	}

	return nil
}
