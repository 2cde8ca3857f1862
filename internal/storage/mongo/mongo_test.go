package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/lugondev/go-dexterity/internal/config"
	"github.com/lugondev/go-dexterity/internal/storage/storagetest"
)

func TestMongoRepository(t *testing.T) {
	if os.Getenv("DEXTERITY_TEST_MONGO") == "" {
		t.Skip("Requires MongoDB - set DEXTERITY_TEST_MONGO=1 and run with docker")
	}

	cfg := config.DefaultConfig().Database.MongoDB
	cfg.Database = "dexterity_test"

	ctx := context.Background()
	repo, err := NewMongoRepository(ctx, &cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()
	_ = repo.database.Drop(ctx)

	storagetest.Run(t, repo)
}
