// Package sqlstore implements the storage repositories on database/sql. The
// mysql and sqlite backends supply a Dialect and share everything else.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lugondev/go-dexterity/internal/storage"
)

// Dialect carries the statements that differ between SQL engines. Every
// statement uses ? placeholders.
type Dialect struct {
	Name string

	// MigrationsTable creates the schema_migrations table.
	MigrationsTable string
	Migrations      []Migration

	// UpsertToken and UpsertVault insert a row or update it in place,
	// keeping created_at.
	UpsertToken string
	UpsertVault string
}

type Repository struct {
	db        *sql.DB
	dialect   Dialect
	tokenRepo storage.TokenRepository
	vaultRepo storage.VaultRepository
	routeRepo storage.RouteRepository
}

// New migrates db to the latest schema of dialect and returns the
// repository. The caller keeps ownership of db until New succeeds.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Repository, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := NewMigrator(db, dialect).Up(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repository{
		db:        db,
		dialect:   dialect,
		tokenRepo: &tokenRepository{db: db, upsert: dialect.UpsertToken},
		vaultRepo: &vaultRepository{db: db, upsert: dialect.UpsertVault},
		routeRepo: &routeRepository{db: db},
	}, nil
}

func (r *Repository) DB() *sql.DB {
	return r.db
}

func (r *Repository) Dialect() string {
	return r.dialect.Name
}

func (r *Repository) Tokens() storage.TokenRepository {
	return r.tokenRepo
}

func (r *Repository) Vaults() storage.VaultRepository {
	return r.vaultRepo
}

func (r *Repository) Routes() storage.RouteRepository {
	return r.routeRepo
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
