// Package datasource supplies the vault sets a router serves.
//
// A Source produces the current vaults, from a manifest file or from the
// snapshots kept in storage. The Refresher polls a Source and reloads the
// router whenever the set changes.
package datasource

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/storage"
	"github.com/lugondev/go-dexterity/internal/vault"
	"github.com/lugondev/go-dexterity/pkg/types"
)

// Source produces the vault set to route over.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Vaults returns the current vaults in load order.
	Vaults(ctx context.Context) ([]vault.Vault, error)
}

// Loader receives a new vault set. *router.Router implements it.
type Loader interface {
	LoadVaults(vaults []vault.Vault) graph.Stats
}

// ManifestSource reads a YAML vault manifest on every call, so edits to the
// file are picked up by the next refresh.
type ManifestSource struct {
	path    string
	caller  vault.Caller
	limiter *rate.Limiter
}

// NewManifestSource creates a source for the manifest at path. caller prices
// remote vaults and may be nil when the manifest has none.
func NewManifestSource(path string, caller vault.Caller) *ManifestSource {
	return &ManifestSource{path: path, caller: caller}
}

// WithLimiter paces every quote call of the produced vaults through limiter.
func (s *ManifestSource) WithLimiter(limiter *rate.Limiter) *ManifestSource {
	s.limiter = limiter
	return s
}

func (s *ManifestSource) Name() string {
	return "manifest:" + s.path
}

func (s *ManifestSource) Vaults(ctx context.Context) ([]vault.Vault, error) {
	m, err := vault.LoadManifest(s.path)
	if err != nil {
		return nil, err
	}
	vaults, err := m.Build(s.caller)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", s.path, err)
	}
	return vault.LimitAll(vaults, s.limiter), nil
}

// RepositorySource rebuilds vaults from the snapshots saved by Snapshot.
type RepositorySource struct {
	repo    storage.Repository
	caller  vault.Caller
	limiter *rate.Limiter
}

func NewRepositorySource(repo storage.Repository, caller vault.Caller) *RepositorySource {
	return &RepositorySource{repo: repo, caller: caller}
}

// WithLimiter paces every quote call of the produced vaults through limiter.
func (s *RepositorySource) WithLimiter(limiter *rate.Limiter) *RepositorySource {
	s.limiter = limiter
	return s
}

func (s *RepositorySource) Name() string {
	return "repository"
}

func (s *RepositorySource) Vaults(ctx context.Context) ([]vault.Vault, error) {
	tokenModels, err := s.repo.Tokens().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	tokens := make(map[string]types.Token, len(tokenModels))
	for _, m := range tokenModels {
		tokens[m.ID] = m.Token()
	}

	vaultModels, err := s.repo.Vaults().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vaults: %w", err)
	}

	vaults := make([]vault.Vault, 0, len(vaultModels))
	for _, m := range vaultModels {
		v, err := vault.New(m.Descriptor(), tokens, s.caller)
		if err != nil {
			return nil, err
		}
		vaults = append(vaults, v)
	}
	return vault.LimitAll(vaults, s.limiter), nil
}

// Snapshot stores vaults and the tokens they trade so that a
// RepositorySource can rebuild them later. Existing rows are updated in
// place.
func Snapshot(ctx context.Context, repo storage.Repository, vaults []vault.Vault) error {
	seen := make(map[string]struct{})
	var tokens []*storage.TokenModel
	models := make([]*storage.VaultModel, 0, len(vaults))

	for _, v := range vaults {
		for _, t := range v.Legs() {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			tokens = append(tokens, storage.NewTokenModel(t))
		}
		models = append(models, storage.NewVaultModel(vault.Describe(v)))
	}

	if err := repo.Tokens().SaveBatch(ctx, tokens); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	if err := repo.Vaults().SaveBatch(ctx, models); err != nil {
		return fmt.Errorf("failed to save vaults: %w", err)
	}
	return nil
}
