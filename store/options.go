package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/drawit-cms/drawit-go/models"
)

const optionsKey = models.PluginSlug + "_options"

// OptionsStore persists the plugin options record.
type OptionsStore struct {
	db *Database
}

// NewOptionsStore creates an options store over the given database.
func NewOptionsStore(db *Database) *OptionsStore {
	return &OptionsStore{db: db}
}

// Current returns the stored options with defaults applied for any missing
// key. A backfilled record is persisted before returning.
func (s *OptionsStore) Current() (models.Options, error) {
	var raw string
	err := s.db.Conn.QueryRow(`SELECT value FROM options WHERE key = ?`, optionsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		opts := models.DefaultOptions()
		if err := s.Save(opts); err != nil {
			return opts, err
		}
		return opts, nil
	}
	if err != nil {
		return models.Options{}, fmt.Errorf("failed to load options: %w", err)
	}

	var opts models.Options
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return models.Options{}, fmt.Errorf("failed to decode options: %w", err)
	}

	opts, changed := opts.Backfill()
	if changed {
		if err := s.Save(opts); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// Save persists the options record verbatim. Callers validate first.
func (s *OptionsStore) Save(opts models.Options) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	_, err = s.db.Conn.Exec(
		`INSERT INTO options (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		optionsKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to save options: %w", err)
	}
	return nil
}
