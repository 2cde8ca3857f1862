// Package sqlite stores vault snapshots and the route journal in a local
// SQLite file. It is the default backend of the CLI.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lugondev/go-dexterity/internal/config"
	"github.com/lugondev/go-dexterity/internal/storage"
	"github.com/lugondev/go-dexterity/internal/storage/sqlstore"
)

func init() {
	storage.RegisterSQLiteFactory(func(ctx context.Context, cfg *config.SQLiteConfig) (storage.Repository, error) {
		return NewSQLiteRepository(ctx, cfg)
	})
}

func NewSQLiteRepository(ctx context.Context, cfg *config.SQLiteConfig) (*sqlstore.Repository, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", cfg.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; WAL still lets readers proceed.
	db.SetMaxOpenConns(1)

	repo, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// Dialect is the SQLite flavour of the shared SQL store.
var Dialect = sqlstore.Dialect{
	Name: "sqlite",
	MigrationsTable: `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
	`,
	Migrations: []sqlstore.Migration{
		{
			Version:     1,
			Description: "Tokens and vault snapshots",
			Up: `
			CREATE TABLE IF NOT EXISTS tokens (
				id TEXT PRIMARY KEY,
				symbol TEXT NOT NULL,
				name TEXT NOT NULL,
				decimals INTEGER NOT NULL,
				image TEXT NOT NULL DEFAULT '',
				updated_at TIMESTAMP NOT NULL
			);

			CREATE TABLE IF NOT EXISTS vaults (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				kind TEXT NOT NULL,
				contract_id TEXT NOT NULL DEFAULT '',
				token_a TEXT NOT NULL,
				token_b TEXT NOT NULL,
				reserve_a INTEGER NOT NULL,
				reserve_b INTEGER NOT NULL,
				fee INTEGER NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				created_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_vaults_token_a ON vaults(token_a);
			CREATE INDEX IF NOT EXISTS idx_vaults_token_b ON vaults(token_b);
			`,
			Down: `
			DROP TABLE IF EXISTS vaults;
			DROP TABLE IF EXISTS tokens;
			`,
		},
		{
			Version:     2,
			Description: "Route journal",
			Up: `
			CREATE TABLE IF NOT EXISTS routes (
				id TEXT PRIMARY KEY,
				query_id TEXT NOT NULL DEFAULT '',
				token_in TEXT NOT NULL,
				token_out TEXT NOT NULL,
				amount_in INTEGER NOT NULL,
				amount_out INTEGER NOT NULL,
				minimum_received INTEGER NOT NULL,
				hops INTEGER NOT NULL,
				vault_ids TEXT NOT NULL,
				opcodes TEXT NOT NULL,
				path TEXT NOT NULL,
				strategy TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_routes_pair ON routes(token_in, token_out, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_routes_created_at ON routes(created_at DESC);
			`,
			Down: `
			DROP TABLE IF EXISTS routes;
			`,
		},
	},
	UpsertToken: `
	INSERT INTO tokens (id, symbol, name, decimals, image, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		symbol = excluded.symbol, name = excluded.name, decimals = excluded.decimals,
		image = excluded.image, updated_at = excluded.updated_at
	`,
	UpsertVault: `
	INSERT INTO vaults (id, name, kind, contract_id, token_a, token_b, reserve_a, reserve_b, fee, updated_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name, kind = excluded.kind, contract_id = excluded.contract_id,
		token_a = excluded.token_a, token_b = excluded.token_b,
		reserve_a = excluded.reserve_a, reserve_b = excluded.reserve_b,
		fee = excluded.fee, updated_at = excluded.updated_at
	`,
}
