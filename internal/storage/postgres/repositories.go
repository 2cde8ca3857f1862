package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lugondev/go-dexterity/internal/storage"
)

const upsertTokenQuery = `
	INSERT INTO tokens (id, symbol, name, decimals, image, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		symbol = $2, name = $3, decimals = $4, image = $5, updated_at = $6
`

type postgresTokenRepository struct {
	pool *pgxpool.Pool
}

func (r *postgresTokenRepository) Save(ctx context.Context, token *storage.TokenModel) error {
	_, err := r.pool.Exec(ctx, upsertTokenQuery,
		token.ID, token.Symbol, token.Name, token.Decimals, token.Image, token.UpdatedAt,
	)
	return err
}

func (r *postgresTokenRepository) SaveBatch(ctx context.Context, tokens []*storage.TokenModel) error {
	helper := storage.NewPostgresBatchHelper(r.pool)
	return helper.BatchInsert(ctx, upsertTokenQuery, len(tokens), func(batch *pgx.Batch, i int) {
		token := tokens[i]
		batch.Queue(upsertTokenQuery,
			token.ID, token.Symbol, token.Name, token.Decimals, token.Image, token.UpdatedAt,
		)
	})
}

func (r *postgresTokenRepository) FindByID(ctx context.Context, id string) (*storage.TokenModel, error) {
	query := `SELECT id, symbol, name, decimals, image, updated_at FROM tokens WHERE id = $1`
	return QueryOne(r.pool, ctx, query, scanToken, id)
}

func (r *postgresTokenRepository) FindAll(ctx context.Context) ([]*storage.TokenModel, error) {
	query := `SELECT id, symbol, name, decimals, image, updated_at FROM tokens ORDER BY id`
	return QueryMany(r.pool, ctx, query, scanToken)
}

func scanToken(row pgx.Row) (*storage.TokenModel, error) {
	var token storage.TokenModel
	err := row.Scan(&token.ID, &token.Symbol, &token.Name, &token.Decimals, &token.Image, &token.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

const (
	vaultColumns = `id, name, kind, contract_id, token_a, token_b, reserve_a, reserve_b, fee, updated_at, created_at`

	upsertVaultQuery = `
	INSERT INTO vaults (` + vaultColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		name = $2, kind = $3, contract_id = $4, token_a = $5, token_b = $6,
		reserve_a = $7, reserve_b = $8, fee = $9, updated_at = $10
`
)

type postgresVaultRepository struct {
	pool *pgxpool.Pool
}

func vaultArgs(v *storage.VaultModel) []interface{} {
	return []interface{}{
		v.ID, v.Name, v.Kind, v.ContractID, v.TokenA, v.TokenB,
		v.ReserveA, v.ReserveB, v.Fee, v.UpdatedAt, v.CreatedAt,
	}
}

func (r *postgresVaultRepository) Save(ctx context.Context, v *storage.VaultModel) error {
	_, err := r.pool.Exec(ctx, upsertVaultQuery, vaultArgs(v)...)
	return err
}

func (r *postgresVaultRepository) SaveBatch(ctx context.Context, vaults []*storage.VaultModel) error {
	helper := storage.NewPostgresBatchHelper(r.pool)
	return helper.BatchInsert(ctx, upsertVaultQuery, len(vaults), func(batch *pgx.Batch, i int) {
		batch.Queue(upsertVaultQuery, vaultArgs(vaults[i])...)
	})
}

func (r *postgresVaultRepository) FindByID(ctx context.Context, id string) (*storage.VaultModel, error) {
	query := `SELECT ` + vaultColumns + ` FROM vaults WHERE id = $1`
	return QueryOne(r.pool, ctx, query, scanVault, id)
}

func (r *postgresVaultRepository) FindByToken(ctx context.Context, tokenID string) ([]*storage.VaultModel, error) {
	query := `SELECT ` + vaultColumns + ` FROM vaults WHERE token_a = $1 OR token_b = $1 ORDER BY created_at, id`
	return QueryMany(r.pool, ctx, query, scanVault, tokenID)
}

func (r *postgresVaultRepository) FindAll(ctx context.Context) ([]*storage.VaultModel, error) {
	query := `SELECT ` + vaultColumns + ` FROM vaults ORDER BY created_at, id`
	return QueryMany(r.pool, ctx, query, scanVault)
}

func (r *postgresVaultRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM vaults WHERE id = $1`, id)
	return err
}

func scanVault(row pgx.Row) (*storage.VaultModel, error) {
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

type postgresRouteRepository struct {
	pool *pgxpool.Pool
}

func (r *postgresRouteRepository) Save(ctx context.Context, route *storage.RouteModel) error {
	query := `
		INSERT INTO routes (` + routeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		route.ID, route.QueryID, route.TokenIn, route.TokenOut, route.AmountIn, route.AmountOut,
		route.MinimumReceived, route.Hops, route.VaultIDs, route.Opcodes, route.Path,
		route.Strategy, route.CreatedAt,
	)
	return err
}

func (r *postgresRouteRepository) FindByID(ctx context.Context, id string) (*storage.RouteModel, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`
	return QueryOne(r.pool, ctx, query, scanRoute, id)
}

func (r *postgresRouteRepository) FindByPair(ctx context.Context, tokenIn, tokenOut string, limit int, offset int) ([]*storage.RouteModel, error) {
	query := `SELECT ` + routeColumns + ` FROM routes
		WHERE token_in = $1 AND token_out = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	return QueryMany(r.pool, ctx, query, scanRoute, tokenIn, tokenOut, limit, offset)
}

func (r *postgresRouteRepository) FindRecent(ctx context.Context, limit int) ([]*storage.RouteModel, error) {
	query := `SELECT ` + routeColumns + ` FROM routes ORDER BY created_at DESC LIMIT $1`
	return QueryMany(r.pool, ctx, query, scanRoute, limit)
}

func scanRoute(row pgx.Row) (*storage.RouteModel, error) {
	var route storage.RouteModel
	err := row.Scan(
		&route.ID, &route.QueryID, &route.TokenIn, &route.TokenOut, &route.AmountIn, &route.AmountOut,
		&route.MinimumReceived, &route.Hops, &route.VaultIDs, &route.Opcodes, &route.Path,
		&route.Strategy, &route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &route, nil
}
