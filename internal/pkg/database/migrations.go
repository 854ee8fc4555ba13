package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/coffee_catalog/internal/pkg/logger"
)

// MigrationFiles returns the *.up.sql files in dir ordered by name
func MigrationFiles(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		absDir, _ := filepath.Abs(dir)
		return nil, fmt.Errorf("no migrations found in %s (absolute: %s)", dir, absDir)
	}
	sort.Strings(paths)
	return paths, nil
}

// RunMigrations applies every migration in dir, each in its own transaction
func RunMigrations(db *sqlx.DB, dir string, log *logger.Logger) error {
	migrations, err := MigrationFiles(dir)
	if err != nil {
		return err
	}

	for _, path := range migrations {
		sql, err := os.ReadFile(path)
		if err != nil {
			absPath, _ := filepath.Abs(path)
			return fmt.Errorf("failed to read migration %s (absolute: %s): %w", path, absPath, err)
		}

		if err := executeMigration(db, string(sql)); err != nil {
			return fmt.Errorf("migration %s failed: %w", path, err)
		}
		log.Debugf("Applied migration %s", filepath.Base(path))
	}

	return nil
}

func executeMigration(db *sqlx.DB, sql string) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(sql); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
