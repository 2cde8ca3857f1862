package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lugondev/go-dexterity/internal/storage"
)

func findOne[T any](ctx context.Context, collection *mongo.Collection, filter interface{}) (*T, error) {
	var doc T
	err := collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func findMany[T any](ctx context.Context, collection *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

type mongoTokenRepository struct {
	collection *mongo.Collection
}

func (r *mongoTokenRepository) Save(ctx context.Context, token *storage.TokenModel) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": token.ID}, token, opts)
	return err
}

func (r *mongoTokenRepository) SaveBatch(ctx context.Context, tokens []*storage.TokenModel) error {
	helper := storage.NewMongoBatchHelper[*storage.TokenModel](r.collection)
	return helper.UpsertMany(ctx, tokens, func(t *storage.TokenModel) string { return t.ID })
}

func (r *mongoTokenRepository) FindByID(ctx context.Context, id string) (*storage.TokenModel, error) {
	return findOne[storage.TokenModel](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoTokenRepository) FindAll(ctx context.Context) ([]*storage.TokenModel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findMany[storage.TokenModel](ctx, r.collection, bson.M{}, opts)
}

type mongoVaultRepository struct {
	collection *mongo.Collection
}

func (r *mongoVaultRepository) Save(ctx context.Context, v *storage.VaultModel) error {
	// created_at survives the replace.
	existing, err := r.FindByID(ctx, v.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		v.CreatedAt = existing.CreatedAt
	}
	opts := options.Replace().SetUpsert(true)
	_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": v.ID}, v, opts)
	return err
}

func (r *mongoVaultRepository) SaveBatch(ctx context.Context, vaults []*storage.VaultModel) error {
	helper := storage.NewMongoBatchHelper[*storage.VaultModel](r.collection)
	return helper.UpsertMany(ctx, vaults, func(v *storage.VaultModel) string { return v.ID })
}

func (r *mongoVaultRepository) FindByID(ctx context.Context, id string) (*storage.VaultModel, error) {
	return findOne[storage.VaultModel](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoVaultRepository) FindByToken(ctx context.Context, tokenID string) ([]*storage.VaultModel, error) {
	filter := bson.M{"$or": bson.A{bson.M{"token_a": tokenID}, bson.M{"token_b": tokenID}}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[storage.VaultModel](ctx, r.collection, filter, opts)
}

func (r *mongoVaultRepository) FindAll(ctx context.Context) ([]*storage.VaultModel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[storage.VaultModel](ctx, r.collection, bson.M{}, opts)
}

func (r *mongoVaultRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type mongoRouteRepository struct {
	collection *mongo.Collection
}

func (r *mongoRouteRepository) Save(ctx context.Context, route *storage.RouteModel) error {
	_, err := r.collection.InsertOne(ctx, route)
	return err
}

func (r *mongoRouteRepository) FindByID(ctx context.Context, id string) (*storage.RouteModel, error) {
	return findOne[storage.RouteModel](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoRouteRepository) FindByPair(ctx context.Context, tokenIn, tokenOut string, limit int, offset int) ([]*storage.RouteModel, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset)).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[storage.RouteModel](ctx, r.collection, bson.M{"token_in": tokenIn, "token_out": tokenOut}, opts)
}

func (r *mongoRouteRepository) FindRecent(ctx context.Context, limit int) ([]*storage.RouteModel, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[storage.RouteModel](ctx, r.collection, bson.M{}, opts)
}
