package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hxnx/synesth/internal/music"
)

const settingsRepoTimeout = 2 * time.Second

var ErrDatabaseNil = errors.New("database is not configured")

type SettingsRepository struct {
	db     *sql.DB
	driver string
}

func NewSettingsRepository(conn *sql.DB, driver string) *SettingsRepository {
	return &SettingsRepository{db: conn, driver: driver}
}

func NewSettingsRepositoryFromDefault(driver string) *SettingsRepository {
	return &SettingsRepository{db: GetDB(), driver: driver}
}

// Get returns the stored settings, or the defaults with found=false when
// nothing has been saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (music.Settings, bool, error) {
	if r == nil || r.db == nil {
		return music.DefaultSettings(), false, ErrDatabaseNil
	}

	ctx, cancel := context.WithTimeout(ctx, settingsRepoTimeout)
	defer cancel()

	const query = `
		SELECT autoplay, volume, extension_active
		FROM settings
		WHERE id = 1
	`

	var s music.Settings
	err := r.db.QueryRowContext(ctx, query).Scan(&s.Autoplay, &s.Volume, &s.ExtensionActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return music.DefaultSettings(), false, nil
		}
		return music.DefaultSettings(), false, err
	}

	return s, true, nil
}

// Save replaces the whole settings row.
func (r *SettingsRepository) Save(ctx context.Context, s music.Settings) error {
	if r == nil || r.db == nil {
		return ErrDatabaseNil
	}
	if err := s.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, settingsRepoTimeout)
	defer cancel()

	const query = `
		INSERT INTO settings (id, autoplay, volume, extension_active, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id)
		DO UPDATE SET
			autoplay = excluded.autoplay,
			volume = excluded.volume,
			extension_active = excluded.extension_active,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, rebind(r.driver, query), s.Autoplay, s.Volume, s.ExtensionActive)
	return err
}

// EnsureDefaults writes the default row only when none exists.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context) error {
	_, found, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return r.Save(ctx, music.DefaultSettings())
}
