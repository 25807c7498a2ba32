package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration files are named NNN_name.sql and written in the SQL subset that
// SQLite and PostgreSQL share. A file named NNN_name.<driver>.sql only runs
// on that driver.
type migration struct {
	Name     string
	Driver   string
	SQL      string
	Checksum string
}

// RunMigrations applies pending migrations in name order, each in its own
// transaction, and records the driver and checksum of every applied file.
// It fails when an applied migration has been edited since.
func RunMigrations(db *DB) error {
	ctx := context.Background()

	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			name TEXT PRIMARY KEY,
			driver TEXT NOT NULL DEFAULT '',
			checksum TEXT NOT NULL DEFAULT '',
			applied_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := appliedChecksums(ctx, db)
	if err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}

	all, err := loadMigrations(migrationsFS)
	if err != nil {
		return fmt.Errorf("reading migration files: %w", err)
	}

	for _, m := range forDriver(all, db.Driver()) {
		if sum, ok := applied[m.Name]; ok {
			if sum != "" && sum != m.Checksum {
				return fmt.Errorf("migration %s changed after it was applied", m.Name)
			}
			continue
		}

		log.Printf("Applying migration %s (%s)", m.Name, db.Driver())
		if err := db.Transaction(func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.SQL); err != nil {
				return fmt.Errorf("executing SQL: %w", err)
			}
			_, err := tx.Exec(db.Rebind(`INSERT INTO _migrations (name, driver, checksum, applied_at) VALUES (?, ?, ?, ?)`),
				m.Name, db.Driver(), m.Checksum, time.Now().UTC())
			return err
		}); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.Name, err)
		}
	}

	return nil
}

func appliedChecksums(ctx context.Context, db *DB) (map[string]string, error) {
	rows, err := db.Query(ctx, "SELECT name, checksum FROM _migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var name, sum string
		if err := rows.Scan(&name, &sum); err != nil {
			return nil, err
		}
		applied[name] = sum
	}
	return applied, rows.Err()
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	names, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]migration, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		sum := sha256.Sum256(content)

		base := path.Base(name)
		m := migration{Name: base, SQL: string(content), Checksum: hex.EncodeToString(sum[:])}
		if stem := strings.TrimSuffix(base, ".sql"); strings.Contains(stem, ".") {
			m.Driver = stem[strings.LastIndex(stem, ".")+1:]
		}
		out = append(out, m)
	}
	return out, nil
}

func forDriver(all []migration, driver string) []migration {
	var out []migration
	for _, m := range all {
		if m.Driver == "" || m.Driver == driver {
			out = append(out, m)
		}
	}
	return out
}
