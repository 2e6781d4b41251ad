package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mchmarny/motorista/pkg/motorista"
)

const (
	upsertProfileSQL = `INSERT INTO profile (id, snapshot, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot, fetched_at = excluded.fetched_at`
	selectProfileSQL = `SELECT snapshot, fetched_at FROM profile WHERE id = ?`
	deleteProfileSQL = `DELETE FROM profile WHERE id = ?`
	purgeActivitySQL = `DELETE FROM activity WHERE motorista_id = ?`
)

// ErrProfileNotCached is returned when no snapshot exists for the driver.
var ErrProfileNotCached = errors.New("profile not cached")

// CachedProfile is the last profile fetched from the backend.
type CachedProfile struct {
	Motorista *motorista.Motorista `json:"motorista" yaml:"motorista"`
	FetchedAt time.Time            `json:"fetched_at" yaml:"fetched_at"`
}

// SaveProfile stores a snapshot of m, replacing the previous one.
func SaveProfile(db *sql.DB, m *motorista.Motorista) error {
	if db == nil {
		return errDBNotInitialized
	}
	if m == nil || m.ID == "" {
		return errors.New("profile with ID required")
	}

	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", m.ID, err)
	}

	if _, err := db.Exec(upsertProfileSQL, m.ID, string(b), time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", m.ID, err)
	}
	return nil
}

// GetProfile returns the cached snapshot for id.
func GetProfile(db *sql.DB, id string) (*CachedProfile, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var snapshot string
	var ms int64
	err := db.QueryRow(selectProfileSQL, id).Scan(&snapshot, &ms)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrProfileNotCached)
		}
		return nil, fmt.Errorf("failed to read profile %s: %w", id, err)
	}

	var m motorista.Motorista
	if err := json.Unmarshal([]byte(snapshot), &m); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", id, err)
	}
	return &CachedProfile{Motorista: &m, FetchedAt: time.UnixMilli(ms).UTC()}, nil
}

// DeleteProfile removes the cached snapshot for id.
func DeleteProfile(db *sql.DB, id string) error {
	if db == nil {
		return errDBNotInitialized
	}
	if _, err := db.Exec(deleteProfileSQL, id); err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	return nil
}

// Purge removes everything stored locally for the driver in one transaction.
func Purge(db *sql.DB, id string) error {
	if db == nil {
		return errDBNotInitialized
	}
	if id == "" {
		return errors.New("motorista ID required")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, q := range []string{deleteProfileSQL, purgeActivitySQL} {
		if _, err := tx.Exec(q, id); err != nil {
			return errors.Join(fmt.Errorf("failed to purge %s: %w", id, err), tx.Rollback())
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
