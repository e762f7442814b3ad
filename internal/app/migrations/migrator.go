package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/yigit/campushub/internal/pkg/logger"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// Source returns the embedded migration source
func Source() (source.Driver, error) {
	return iofs.New(schemaFS, "sql")
}

// schemaMigrator is the part of *migrate.Migrate the Migrator drives
type schemaMigrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Close() (error, error)
}

// Migrator applies the embedded schema migrations
type Migrator struct {
	pool *pgxpool.Pool
	open func() (schemaMigrator, error)
}

// NewMigrator creates a new migrator
func NewMigrator(pool *pgxpool.Pool) *Migrator {
	m := &Migrator{pool: pool}
	m.open = func() (schemaMigrator, error) { return m.instance() }
	return m
}

// with opens a migrate instance for one run and closes it afterwards
func (m *Migrator) with(run func(schemaMigrator) error) error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := mg.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed to close migrator")
		}
	}()
	return run(mg)
}

func (m *Migrator) instance() (*migrate.Migrate, error) {
	sourceDriver, err := Source()
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	databaseDriver, err := migratepgx.WithInstance(stdlib.OpenDBFromPool(m.pool), &migratepgx.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", sourceDriver, "pgx5", databaseDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return mg, nil
}

// Up applies every pending migration. No pending migration is not an error.
func (m *Migrator) Up() error {
	return m.with(func(mg schemaMigrator) error {
		if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}

		version, dirty, err := mg.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to read migration version: %w", err)
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database schema is up to date")
		return nil
	})
}

// Down rolls back every migration
func (m *Migrator) Down() error {
	return m.with(func(mg schemaMigrator) error {
		if err := mg.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		return nil
	})
}
