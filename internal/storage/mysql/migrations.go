package mysql

import "github.com/lugondev/go-dexterity/internal/storage/sqlstore"

var migrations = []sqlstore.Migration{
	{
		Version:     1,
		Description: "Tokens and vault snapshots",
		Up: `
		CREATE TABLE IF NOT EXISTS tokens (
			id VARCHAR(255) PRIMARY KEY,
			symbol VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			decimals TINYINT UNSIGNED NOT NULL,
			image VARCHAR(1024) NOT NULL DEFAULT '',
			updated_at DATETIME(6) NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;

		CREATE TABLE IF NOT EXISTS vaults (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			kind VARCHAR(64) NOT NULL,
			contract_id VARCHAR(255) NOT NULL DEFAULT '',
			token_a VARCHAR(255) NOT NULL,
			token_b VARCHAR(255) NOT NULL,
			reserve_a BIGINT UNSIGNED NOT NULL,
			reserve_b BIGINT UNSIGNED NOT NULL,
			fee INT UNSIGNED NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_vaults_token_a (token_a),
			INDEX idx_vaults_token_b (token_b)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
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
			id VARCHAR(64) PRIMARY KEY,
			query_id VARCHAR(64) NOT NULL DEFAULT '',
			token_in VARCHAR(255) NOT NULL,
			token_out VARCHAR(255) NOT NULL,
			amount_in BIGINT UNSIGNED NOT NULL,
			amount_out BIGINT UNSIGNED NOT NULL,
			minimum_received BIGINT UNSIGNED NOT NULL,
			hops INT NOT NULL,
			vault_ids JSON NOT NULL,
			opcodes JSON NOT NULL,
			path TEXT NOT NULL,
			strategy VARCHAR(64) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_routes_pair (token_in, token_out, created_at DESC),
			INDEX idx_routes_created_at (created_at DESC)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
		`,
		Down: `
		DROP TABLE IF EXISTS routes;
		`,
	},
}

// Dialect is the MySQL flavour of the shared SQL store.
var Dialect = sqlstore.Dialect{
	Name: "mysql",
	MigrationsTable: `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT PRIMARY KEY,
		description VARCHAR(255) NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`,
	Migrations: migrations,
	UpsertToken: `
	INSERT INTO tokens (id, symbol, name, decimals, image, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		symbol = VALUES(symbol), name = VALUES(name), decimals = VALUES(decimals),
		image = VALUES(image), updated_at = VALUES(updated_at)
	`,
	UpsertVault: `
	INSERT INTO vaults (id, name, kind, contract_id, token_a, token_b, reserve_a, reserve_b, fee, updated_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		name = VALUES(name), kind = VALUES(kind), contract_id = VALUES(contract_id),
		token_a = VALUES(token_a), token_b = VALUES(token_b),
		reserve_a = VALUES(reserve_a), reserve_b = VALUES(reserve_b),
		fee = VALUES(fee), updated_at = VALUES(updated_at)
	`,
}
