package datasource

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/lugondev/go-dexterity/internal/common"
	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/vault"
)

// Refresher polls a Source and hands every changed vault set to a Loader.
// A failing poll is logged and the loader keeps the last good set.
type Refresher struct {
	common.LoggerMixin

	source   Source
	loader   Loader
	interval time.Duration

	mu      sync.Mutex
	current []vault.Descriptor
	loaded  bool
}

// NewRefresher creates a refresher polling source every interval.
func NewRefresher(source Source, loader Loader, interval time.Duration) *Refresher {
	return &Refresher{
		LoggerMixin: common.NewLoggerMixin(),
		source:      source,
		loader:      loader,
		interval:    interval,
	}
}

// Refresh polls the source once. It reports whether the loader received a
// new vault set.
func (r *Refresher) Refresh(ctx context.Context) (bool, error) {
	vaults, err := r.source.Vaults(ctx)
	if err != nil {
		return false, err
	}

	descriptors := make([]vault.Descriptor, len(vaults))
	for i, v := range vaults {
		descriptors[i] = vault.Describe(v)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded && slices.Equal(r.current, descriptors) {
		return false, nil
	}

	stats := r.loader.LoadVaults(vaults)
	r.current = descriptors
	r.loaded = true

	r.GetLogger().Info("vault set reloaded",
		"source", r.source.Name(),
		"vaults", stats.VaultCount,
		"edges", stats.EdgeCount,
	)
	return true, nil
}

// Run refreshes immediately, then on every tick until ctx ends. The
// initial refresh error is returned; later ones are only logged.
func (r *Refresher) Run(ctx context.Context) error {
	if _, err := r.Refresh(ctx); err != nil {
		return err
	}
	if r.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	r.GetLogger().Info("starting vault refresher",
		"source", r.source.Name(),
		"interval", r.interval,
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.GetLogger().Info("vault refresher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Refresh(ctx); err != nil {
				r.GetLogger().Error("failed to refresh vaults",
					"source", r.source.Name(),
					"error", err,
				)
			}
		}
	}
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(vaults []vault.Vault) graph.Stats

func (f LoaderFunc) LoadVaults(vaults []vault.Vault) graph.Stats {
	return f(vaults)
}
