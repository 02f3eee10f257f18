package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/flexit/internal/reps"
)

// SettingThresholds holds the user's default rep thresholds.
const SettingThresholds = "rep_thresholds"

// SettingsRepository reads and writes key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Thresholds returns the stored default thresholds, or ErrNotFound when
// none were saved.
func (r *SettingsRepository) Thresholds() (reps.Thresholds, error) {
	raw, err := r.Get(SettingThresholds)
	if err != nil {
		return reps.Thresholds{}, err
	}

	var t reps.Thresholds
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return reps.Thresholds{}, fmt.Errorf("decode thresholds: %w", err)
	}
	if err := t.Validate(); err != nil {
		return reps.Thresholds{}, fmt.Errorf("stored thresholds: %w", err)
	}
	return t, nil
}

// SetThresholds validates and stores the default thresholds.
func (r *SettingsRepository) SetThresholds(t reps.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return r.Set(SettingThresholds, string(raw))
}
