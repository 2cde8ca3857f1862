package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"github.com/lugondev/go-dexterity/internal/storage"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

func queryOne[T any](ctx context.Context, db *sql.DB, query string, scan func(scanner) (*T, error), args ...interface{}) (*T, error) {
	item, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func queryMany[T any](ctx context.Context, db *sql.DB, query string, scan func(scanner) (*T, error), args ...interface{}) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

type tokenRepository struct {
	db     *sql.DB
	upsert string
}

func (r *tokenRepository) Save(ctx context.Context, token *storage.TokenModel) error {
	_, err := r.db.ExecContext(ctx, r.upsert,
		token.ID, token.Symbol, token.Name, token.Decimals, token.Image, token.UpdatedAt,
	)
	return err
}

func (r *tokenRepository) SaveBatch(ctx context.Context, tokens []*storage.TokenModel) error {
	helper := storage.NewSQLBatchHelper(r.db)
	return helper.BatchInsert(ctx, r.upsert, len(tokens), func(stmt *sql.Stmt, i int) error {
		token := tokens[i]
		_, err := stmt.ExecContext(ctx,
			token.ID, token.Symbol, token.Name, token.Decimals, token.Image, token.UpdatedAt,
		)
		return err
	})
}

func (r *tokenRepository) FindByID(ctx context.Context, id string) (*storage.TokenModel, error) {
	query := `SELECT id, symbol, name, decimals, image, updated_at FROM tokens WHERE id = ?`
	return queryOne(ctx, r.db, query, scanToken, id)
}

func (r *tokenRepository) FindAll(ctx context.Context) ([]*storage.TokenModel, error) {
	query := `SELECT id, symbol, name, decimals, image, updated_at FROM tokens ORDER BY id`
	return queryMany(ctx, r.db, query, scanToken)
}

func scanToken(row scanner) (*storage.TokenModel, error) {
	var token storage.TokenModel
	err := row.Scan(&token.ID, &token.Symbol, &token.Name, &token.Decimals, &token.Image, &token.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

const vaultColumns = `id, name, kind, contract_id, token_a, token_b, reserve_a, reserve_b, fee, updated_at, created_at`

type vaultRepository struct {
	db     *sql.DB
	upsert string
}

func vaultArgs(v *storage.VaultModel) []interface{} {
	return []interface{}{
		v.ID, v.Name, v.Kind, v.ContractID, v.TokenA, v.TokenB,
		v.ReserveA, v.ReserveB, v.Fee, v.UpdatedAt, v.CreatedAt,
	}
}

func (r *vaultRepository) Save(ctx context.Context, v *storage.VaultModel) error {
	_, err := r.db.ExecContext(ctx, r.upsert, vaultArgs(v)...)
	return err
}

func (r *vaultRepository) SaveBatch(ctx context.Context, vaults []*storage.VaultModel) error {
	helper := storage.NewSQLBatchHelper(r.db)
	return helper.BatchInsert(ctx, r.upsert, len(vaults), func(stmt *sql.Stmt, i int) error {
		_, err := stmt.ExecContext(ctx, vaultArgs(vaults[i])...)
		return err
	})
}

func (r *vaultRepository) FindByID(ctx context.Context, id string) (*storage.VaultModel, error) {
	query := `SELECT ` + vaultColumns + ` FROM vaults WHERE id = ?`
	return queryOne(ctx, r.db, query, scanVault, id)
}

func (r *vaultRepository) FindByToken(ctx context.Context, tokenID string) ([]*storage.VaultModel, error) {
	query := `SELECT ` + vaultColumns + ` FROM vaults WHERE token_a = ? OR token_b = ? ORDER BY created_at, id`
	return queryMany(ctx, r.db, query, scanVault, tokenID, tokenID)
}

func (r *vaultRepository) FindAll(ctx context.Context) ([]*storage.VaultModel, error) {
	query := `SELECT ` + vaultColumns + ` FROM vaults ORDER BY created_at, id`
	return queryMany(ctx, r.db, query, scanVault)
}

func (r *vaultRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM vaults WHERE id = ?`, id)
	return err
}

func scanVault(row scanner) (*storage.VaultModel, error) {
	var v storage.VaultModel
	err := row.Scan(
		&v.ID, &v.Name, &v.Kind, &v.ContractID, &v.TokenA, &v.TokenB,
		&v.ReserveA, &v.ReserveB, &v.Fee, &v.UpdatedAt, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

const routeColumns = `id, query_id, token_in, token_out, amount_in, amount_out, minimum_received,
	hops, vault_ids, opcodes, path, strategy, created_at`

// routeRepository stores the vault id and opcode lists as JSON arrays.
type routeRepository struct {
	db *sql.DB
}

func (r *routeRepository) Save(ctx context.Context, route *storage.RouteModel) error {
	vaultIDs, err := sonnet.Marshal(nonNil(route.VaultIDs))
	if err != nil {
		return fmt.Errorf("failed to encode vault ids: %w", err)
	}
	opcodes, err := sonnet.Marshal(nonNil(route.Opcodes))
	if err != nil {
		return fmt.Errorf("failed to encode opcodes: %w", err)
	}

	query := `INSERT INTO routes (` + routeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		route.ID, route.QueryID, route.TokenIn, route.TokenOut, route.AmountIn, route.AmountOut,
		route.MinimumReceived, route.Hops, string(vaultIDs), string(opcodes), route.Path,
		route.Strategy, route.CreatedAt,
	)
	return err
}

func (r *routeRepository) FindByID(ctx context.Context, id string) (*storage.RouteModel, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = ?`
	return queryOne(ctx, r.db, query, scanRoute, id)
}

func (r *routeRepository) FindByPair(ctx context.Context, tokenIn, tokenOut string, limit int, offset int) ([]*storage.RouteModel, error) {
	query := `SELECT ` + routeColumns + ` FROM routes
		WHERE token_in = ? AND token_out = ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return queryMany(ctx, r.db, query, scanRoute, tokenIn, tokenOut, limit, offset)
}

func (r *routeRepository) FindRecent(ctx context.Context, limit int) ([]*storage.RouteModel, error) {
	query := `SELECT ` + routeColumns + ` FROM routes ORDER BY created_at DESC LIMIT ?`
	return queryMany(ctx, r.db, query, scanRoute, limit)
}

func scanRoute(row scanner) (*storage.RouteModel, error) {
	var (
		route    storage.RouteModel
		vaultIDs string
		opcodes  string
	)
	err := row.Scan(
		&route.ID, &route.QueryID, &route.TokenIn, &route.TokenOut, &route.AmountIn, &route.AmountOut,
		&route.MinimumReceived, &route.Hops, &vaultIDs, &opcodes, &route.Path,
		&route.Strategy, &route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := sonnet.Unmarshal([]byte(vaultIDs), &route.VaultIDs); err != nil {
		return nil, fmt.Errorf("route %s: failed to decode vault ids: %w", route.ID, err)
	}
	if err := sonnet.Unmarshal([]byte(opcodes), &route.Opcodes); err != nil {
		return nil, fmt.Errorf("route %s: failed to decode opcodes: %w", route.ID, err)
	}
	return &route, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
