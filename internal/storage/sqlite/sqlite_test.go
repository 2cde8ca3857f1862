package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lugondev/go-dexterity/internal/config"
	"github.com/lugondev/go-dexterity/internal/storage"
	"github.com/lugondev/go-dexterity/internal/storage/sqlstore"
	"github.com/lugondev/go-dexterity/internal/storage/storagetest"
)

func newTestRepository(t *testing.T) *sqlstore.Repository {
	t.Helper()
	cfg := &config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "dexterity.db")}
	repo, err := NewSQLiteRepository(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	storagetest.Run(t, newTestRepository(t))
}

func TestSQLiteMigrations(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	migrator := sqlstore.NewMigrator(repo.DB(), Dialect)

	version, err := migrator.Version(ctx)
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if version != 2 {
		t.Fatalf("Version() = %d, want 2", version)
	}

	applied, err := migrator.Up(ctx)
	if err != nil || applied != 0 {
		t.Fatalf("Up() on a migrated database = %d, %v, want 0, nil", applied, err)
	}

	reverted, err := migrator.Down(ctx, 1)
	if err != nil || reverted != 1 {
		t.Fatalf("Down(1) = %d, %v, want 1, nil", reverted, err)
	}
	if _, err := repo.Routes().FindRecent(ctx, 1); err == nil {
		t.Error("routes table should be gone after Down(1)")
	}

	applied, err = migrator.Up(ctx)
	if err != nil || applied != 1 {
		t.Fatalf("Up() after Down = %d, %v, want 1, nil", applied, err)
	}
}

func TestConnectionManager(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Enabled: true,
		Type:    "sqlite",
		SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "cm.db")},
	}
	cm, err := storage.NewConnectionManager(cfg)
	if err != nil {
		t.Fatalf("NewConnectionManager() error = %v", err)
	}
	defer cm.Close()

	if _, err := cm.GetRepository(); err == nil {
		t.Error("GetRepository() before Connect should fail")
	}

	repo, err := cm.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	again, err := cm.Connect(context.Background())
	if err != nil || again != repo {
		t.Error("Connect() should reuse the open repository")
	}

	if _, err := storage.NewConnectionManager(&config.DatabaseConfig{}); err == nil {
		t.Error("NewConnectionManager() with storage disabled should fail")
	}
}

func TestNewSQLiteRepositoryRequiresPath(t *testing.T) {
	if _, err := NewSQLiteRepository(context.Background(), &config.SQLiteConfig{}); err == nil {
		t.Error("expected an error for an empty path")
	}
}
