package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

type Migrator struct {
	db      *sql.DB
	dialect Dialect
}

func NewMigrator(db *sql.DB, dialect Dialect) *Migrator {
	return &Migrator{db: db, dialect: dialect}
}

// Up applies the pending migrations one transaction each and returns how many
// ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := 0
	for _, migration := range m.dialect.Migrations {
		ok, err := m.isMigrationApplied(ctx, migration.Version)
		if err != nil {
			return applied, fmt.Errorf("failed to check if migration %d is applied: %w", migration.Version, err)
		}
		if ok {
			continue
		}

		if err := m.applyMigration(ctx, migration); err != nil {
			return applied, fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
		applied++
	}

	return applied, nil
}

// Down reverts every applied migration newer than targetVersion.
func (m *Migrator) Down(ctx context.Context, targetVersion int) (int, error) {
	reverted := 0
	for i := len(m.dialect.Migrations) - 1; i >= 0; i-- {
		migration := m.dialect.Migrations[i]
		if migration.Version <= targetVersion {
			break
		}

		applied, err := m.isMigrationApplied(ctx, migration.Version)
		if err != nil {
			return reverted, fmt.Errorf("failed to check if migration %d is applied: %w", migration.Version, err)
		}

		if !applied {
			continue
		}

		if err := m.revertMigration(ctx, migration); err != nil {
			return reverted, fmt.Errorf("failed to revert migration %d: %w", migration.Version, err)
		}
		reverted++
	}

	return reverted, nil
}

// Version returns the highest applied migration, 0 when none is.
func (m *Migrator) Version(ctx context.Context) (int, error) {
	var version int
	err := m.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	return version, err
}

func (m *Migrator) ensureMigrationsTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, m.dialect.MigrationsTable)
	return err
}

func (m *Migrator) isMigrationApplied(ctx context.Context, version int) (bool, error) {
	query := `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`
	var count int
	err := m.db.QueryRowContext(ctx, query, version).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *Migrator) applyMigration(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
		return err
	}

	insertQuery := `INSERT INTO schema_migrations (version, description) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, insertQuery, migration.Version, migration.Description); err != nil {
		return err
	}

	return tx.Commit()
}

func (m *Migrator) revertMigration(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.Down); err != nil {
		return err
	}

	deleteQuery := `DELETE FROM schema_migrations WHERE version = ?`
	if _, err := tx.ExecContext(ctx, deleteQuery, migration.Version); err != nil {
		return err
	}

	return tx.Commit()
}
