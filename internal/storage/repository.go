package storage

import (
	"context"
)

type TokenRepository interface {
	Save(ctx context.Context, token *TokenModel) error
	SaveBatch(ctx context.Context, tokens []*TokenModel) error
	FindByID(ctx context.Context, id string) (*TokenModel, error)
	FindAll(ctx context.Context) ([]*TokenModel, error)
}

type VaultRepository interface {
	Save(ctx context.Context, v *VaultModel) error
	SaveBatch(ctx context.Context, vaults []*VaultModel) error
	FindByID(ctx context.Context, id string) (*VaultModel, error)
	FindByToken(ctx context.Context, tokenID string) ([]*VaultModel, error)
	FindAll(ctx context.Context) ([]*VaultModel, error)
	Delete(ctx context.Context, id string) error
}

type RouteRepository interface {
	Save(ctx context.Context, route *RouteModel) error
	FindByID(ctx context.Context, id string) (*RouteModel, error)
	FindByPair(ctx context.Context, tokenIn, tokenOut string, limit int, offset int) ([]*RouteModel, error)
	FindRecent(ctx context.Context, limit int) ([]*RouteModel, error)
}

// Repository groups the stores of one database connection. FindByID methods
// return nil, nil when the record does not exist.
type Repository interface {
	Tokens() TokenRepository
	Vaults() VaultRepository
	Routes() RouteRepository
	Close() error
	Ping(ctx context.Context) error
}
