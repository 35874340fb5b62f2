package db

import (
	"cmp"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	dirUp   = "up"
	dirDown = "down"
)

// Migration is one versioned schema change with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// loadMigrations reads the embedded NNNN_name.{up,down}.sql pairs, sorted by
// version. A version missing either half is an error.
func loadMigrations() ([]Migration, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	pairs := map[int]*Migration{}
	for _, file := range files {
		version, name, direction, err := parseFilename(path.Base(file))
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", path.Base(file), err)
		}

		body, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		m := pairs[version]
		if m == nil {
			m = &Migration{Version: version, Name: name}
			pairs[version] = m
		}

		dst := &m.UpSQL
		if direction == dirDown {
			dst = &m.DownSQL
		}
		if *dst != "" {
			return nil, fmt.Errorf("migration %04d: duplicate %s file", version, direction)
		}
		*dst = string(body)
	}

	out := make([]Migration, 0, len(pairs))
	for _, m := range pairs {
		switch {
		case m.UpSQL == "":
			return nil, fmt.Errorf("migration %04d: missing up file", m.Version)
		case m.DownSQL == "":
			return nil, fmt.Errorf("migration %04d: missing down file", m.Version)
		}
		out = append(out, *m)
	}

	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

// parseFilename splits "NNNN_name.up.sql" into version, name and direction.
func parseFilename(filename string) (version int, name, direction string, err error) {
	stem, ok := strings.CutSuffix(filename, ".sql")
	if !ok {
		return 0, "", "", fmt.Errorf("want .sql suffix")
	}

	stem, direction, ok = cutLast(stem, ".")
	if !ok || (direction != dirUp && direction != dirDown) {
		return 0, "", "", fmt.Errorf("want .up.sql or .down.sql suffix")
	}

	raw, name, ok := strings.Cut(stem, "_")
	if !ok || name == "" {
		return 0, "", "", fmt.Errorf("want NNNN_name.%s.sql", direction)
	}

	version, err = strconv.Atoi(raw)
	if err != nil {
		return 0, "", "", fmt.Errorf("version %q: %w", raw, err)
	}
	if version <= 0 {
		return 0, "", "", fmt.Errorf("version must be positive, got %d", version)
	}

	return version, name, direction, nil
}

func cutLast(s, sep string) (before, after string, ok bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// migrateUp applies every pending migration in version order.
func migrateUp(ctx context.Context, conn *sqlx.DB) error {
	migrations, applied, err := migrationState(ctx, conn)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		err := runMigration(ctx, conn, m.UpSQL,
			`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
			m.Version, m.Name, time.Now().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("apply %04d_%s: %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// MigrateDown reverts the n most recently applied migrations.
func MigrateDown(ctx context.Context, conn *sqlx.DB, n int) error {
	if n <= 0 {
		return fmt.Errorf("n must be positive, got %d", n)
	}

	migrations, applied, err := migrationState(ctx, conn)
	if err != nil {
		return err
	}

	migrations = slices.DeleteFunc(migrations, func(m Migration) bool { return !applied[m.Version] })
	if n > len(migrations) {
		return fmt.Errorf("cannot revert %d migrations, only %d applied", n, len(migrations))
	}
	slices.Reverse(migrations)

	for _, m := range migrations[:n] {
		log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		err := runMigration(ctx, conn, m.DownSQL,
			`DELETE FROM schema_migrations WHERE version = ?`, m.Version,
		)
		if err != nil {
			return fmt.Errorf("revert %04d_%s: %w", m.Version, m.Name, err)
		}
	}

	return nil
}

func migrationState(ctx context.Context, conn *sqlx.DB) ([]Migration, map[int]bool, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, nil, err
	}

	_, err = conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)`)
	if err != nil {
		return nil, nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return nil, nil, err
	}
	return migrations, applied, nil
}

func appliedVersions(ctx context.Context, conn *sqlx.DB) (map[int]bool, error) {
	var versions []int
	if err := sqlx.SelectContext(ctx, conn, &versions, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("read applied versions: %w", err)
	}

	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// runMigration executes the schema change and its bookkeeping row in one
// transaction.
func runMigration(ctx context.Context, conn *sqlx.DB, stmt, bookkeeping string, args ...any) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	return tx.Commit()
}
