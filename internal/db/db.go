package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrVersionConflict is returned when an optimistic version check fails at
// commit time. The whole operation rolled back; a retry from a fresh read
// is safe.
var ErrVersionConflict = errors.New("version conflict")

func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func RunMigrations(db *sqlx.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", absPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func Exists(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) (bool, error) {
	var exists bool
	err := db.GetContext(ctx, &exists, query, args...)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return exists, err
}

// BumpVersion increments the class version inside tx, guarded by the version
// the caller read. Zero rows affected means a concurrent writer got there
// first.
func BumpVersion(ctx context.Context, tx *sqlx.Tx, classID, expectedVersion int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE classes SET version = version + 1 WHERE id = $1 AND version = $2`,
		classID, expectedVersion,
	)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVersionConflict
	}

	return nil
}
