package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	DataFileName string = "data.db"

	migrationsDir = "sql/migrations"

	createVersionTable = `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	selectVersion = `SELECT COALESCE(MAX(version), 0) FROM schema_version`
	insertVersion = `INSERT INTO schema_version (version) VALUES (?)`
)

var (
	//go:embed sql/migrations/*.sql
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

type migration struct {
	version int
	name    string
}

// Init creates the database when needed and applies pending migrations.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	db, err := GetDB(dbFilePath)
	if err != nil {
		return fmt.Errorf("error opening database %s: %w", dbFilePath, err)
	}
	defer db.Close()

	if err := migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database %s: %w", dbFilePath, err)
	}
	return nil
}

func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return conn, nil
}

// SchemaVersion returns the last applied migration.
func SchemaVersion(db *sql.DB) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	var v int
	if err := db.QueryRow(selectVersion).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(createVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	list, err := migrations()
	if err != nil {
		return err
	}

	for _, m := range list {
		if m.version <= current {
			continue
		}

		b, err := f.ReadFile(path.Join(migrationsDir, m.name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", m.name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if _, err := tx.Exec(string(b)); err != nil {
			return errors.Join(fmt.Errorf("failed to apply migration %s: %w", m.name, err), tx.Rollback())
		}
		if _, err := tx.Exec(insertVersion, m.version); err != nil {
			return errors.Join(fmt.Errorf("failed to record migration %s: %w", m.name, err), tx.Rollback())
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.name, err)
		}
		slog.Debug("migration applied", "version", m.version, "name", m.name)
	}
	return nil
}

// migrations lists the embedded files ordered by their numeric prefix.
func migrations() ([]migration, error) {
	entries, err := fs.ReadDir(f, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	list := make([]migration, 0, len(entries))
	for _, e := range entries {
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("migration %s has no version prefix", e.Name())
		}
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s has invalid version: %w", e.Name(), err)
		}
		list = append(list, migration{version: v, name: e.Name()})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].version < list[j].version })
	return list, nil
}
