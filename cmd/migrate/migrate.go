package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

type migrationFile struct {
	version int
	name    string
	path    string
	kind    string // up or down
}

type migrator struct {
	db     *sql.DB
	fsys   fs.FS
	logger logger.Logger
}

func (m *migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

// loadMigrationFiles lists NNN_name.up.sql / NNN_name.down.sql files sorted by version.
func loadMigrationFiles(fsys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".sql") {
			continue
		}

		kind := "up"
		base := strings.TrimSuffix(lower, ".sql")
		switch {
		case strings.HasSuffix(base, ".down"):
			kind = "down"
			base = strings.TrimSuffix(base, ".down")
		case strings.HasSuffix(base, ".up"):
			base = strings.TrimSuffix(base, ".up")
		}

		ver, migName, err := parseVersionAndName(base)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		files = append(files, migrationFile{version: ver, name: migName, path: name, kind: kind})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

func parseVersionAndName(base string) (int, string, error) {
	verStr, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", errors.New("expected NNN_name")
	}
	ver, err := strconv.Atoi(verStr)
	if err != nil || ver <= 0 {
		return 0, "", errors.New("invalid version prefix")
	}
	return ver, name, nil
}

func (m *migrator) alreadyApplied(ctx context.Context, version int) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	return exists, err
}

func (m *migrator) applyUp(ctx context.Context, files []migrationFile) error {
	for _, f := range files {
		if f.kind != "up" {
			continue
		}
		applied, err := m.alreadyApplied(ctx, f.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		m.logger.Info(ctx, "Applying migration", map[string]interface{}{"version": f.version, "name": f.name})
		err = m.inTx(ctx, f, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)",
				f.version, f.name, time.Now().UTC())
			return err
		})
		if err != nil {
			return fmt.Errorf("failed applying %s: %w", f.path, err)
		}
	}
	return nil
}

func (m *migrator) applyDown(ctx context.Context, files []migrationFile) error {
	var downs []migrationFile
	for _, f := range files {
		if f.kind == "down" {
			downs = append(downs, f)
		}
	}
	sort.Slice(downs, func(i, j int) bool { return downs[i].version > downs[j].version })

	for _, f := range downs {
		applied, err := m.alreadyApplied(ctx, f.version)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}

		m.logger.Info(ctx, "Reverting migration", map[string]interface{}{"version": f.version, "name": f.name})
		err = m.inTx(ctx, f, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", f.version)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed reverting %s: %w", f.path, err)
		}
	}
	return nil
}

// inTx runs the file and the bookkeeping statement atomically.
func (m *migrator) inTx(ctx context.Context, f migrationFile, record func(*sql.Tx) error) error {
	body, err := fs.ReadFile(m.fsys, f.path)
	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := record(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
