package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lugondev/go-dexterity/internal/config"
	"github.com/lugondev/go-dexterity/internal/storage"
)

type MongoRepository struct {
	client    *mongo.Client
	database  *mongo.Database
	tokens    *mongo.Collection
	vaults    *mongo.Collection
	routes    *mongo.Collection
	tokenRepo storage.TokenRepository
	vaultRepo storage.VaultRepository
	routeRepo storage.RouteRepository
}

func NewMongoRepository(ctx context.Context, cfg *config.MongoDBConfig) (*MongoRepository, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(time.Duration(cfg.ConnectTimeout) * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)

	repo := &MongoRepository{
		client:   client,
		database: database,
		tokens:   database.Collection("tokens"),
		vaults:   database.Collection("vaults"),
		routes:   database.Collection("routes"),
	}

	repo.tokenRepo = &mongoTokenRepository{collection: repo.tokens}
	repo.vaultRepo = &mongoVaultRepository{collection: repo.vaults}
	repo.routeRepo = &mongoRouteRepository{collection: repo.routes}

	if err := repo.createIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return repo, nil
}

func (r *MongoRepository) createIndexes(ctx context.Context) error {
	indexes := []struct {
		collection *mongo.Collection
		models     []mongo.IndexModel
	}{
		{
			collection: r.vaults,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "token_a", Value: 1}}},
				{Keys: bson.D{{Key: "token_b", Value: 1}}},
			},
		},
		{
			collection: r.routes,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "token_in", Value: 1}, {Key: "token_out", Value: 1}, {Key: "created_at", Value: -1}}},
				{Keys: bson.D{{Key: "created_at", Value: -1}}},
			},
		},
	}

	for _, idx := range indexes {
		if _, err := idx.collection.Indexes().CreateMany(ctx, idx.models); err != nil {
			return err
		}
	}

	return nil
}

func (r *MongoRepository) Tokens() storage.TokenRepository {
	return r.tokenRepo
}

func (r *MongoRepository) Vaults() storage.VaultRepository {
	return r.vaultRepo
}

func (r *MongoRepository) Routes() storage.RouteRepository {
	return r.routeRepo
}

func (r *MongoRepository) Close() error {
	if r.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.client.Disconnect(ctx)
	}
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
