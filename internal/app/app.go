package app

import (
	"context"
	"fmt"

	"github.com/andy/multitimer/internal/config"
	"github.com/andy/multitimer/internal/crypto"
	"github.com/andy/multitimer/internal/db"
	"github.com/andy/multitimer/internal/domain"
	"github.com/andy/multitimer/internal/prefs"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Prefs  prefs.Store
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Getting the database key from the keyring (generating one on first run)
// 3. Opening the preferences database
// 4. Running migrations
func New(ctx context.Context) (*App, error) {
	// Load config from default path
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	// Ensure all necessary directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	key, err := databaseKey()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database.Path, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations to ensure schema is up to date
	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &App{
		Config: cfg,
		DB:     database,
		Prefs:  prefs.NewSQLStore(database),
	}, nil
}

// databaseKey fetches the database key from the keyring, generating and
// storing one on first run. When no keyring is available the database is
// opened unencrypted rather than blocking startup on secret management for
// what is, after all, a timer widget.
func databaseKey() (string, error) {
	keyring := crypto.NewKeyring()

	key, err := keyring.GetKey()
	if err == nil {
		return key, nil
	}

	key, err = crypto.GenerateKey()
	if err != nil {
		return "", err
	}
	if err := keyring.SetKey(key); err != nil {
		// No keyring on this platform: fall back to a plain database.
		return "", nil
	}
	return key, nil
}

// LoadPreferences returns the stored blob for a board, or defaults when
// nothing has been saved yet.
func (a *App) LoadPreferences(ctx context.Context, board string) (*domain.Preferences, error) {
	p, err := a.Prefs.Load(ctx, board)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return domain.DefaultPreferences(), nil
	}
	return p, nil
}

// SavePreferences stores the blob for a board.
func (a *App) SavePreferences(ctx context.Context, board string, p *domain.Preferences) error {
	return a.Prefs.Save(ctx, board, p)
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
