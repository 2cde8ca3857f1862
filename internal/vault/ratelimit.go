package vault

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/lugondev/go-dexterity/pkg/opcode"
	"github.com/lugondev/go-dexterity/pkg/types"
)

// RateLimited throttles the quote calls of the wrapped vault. Several vaults
// may share one limiter so that all calls against one ledger endpoint are
// paced together.
type RateLimited struct {
	Vault
	limiter *rate.Limiter
}

// WithRateLimit wraps v. A nil limiter returns v unchanged.
func WithRateLimit(v Vault, limiter *rate.Limiter) Vault {
	if limiter == nil {
		return v
	}
	return &RateLimited{Vault: v, limiter: limiter}
}

// NewLimiter returns a limiter allowing rps calls per second with the given
// burst. rps <= 0 disables limiting (nil).
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Quote waits for a token, then quotes. A context that ends while waiting
// fails the quote.
func (v *RateLimited) Quote(ctx context.Context, amountIn uint64, op opcode.Opcode) (types.Quote, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return types.Quote{}, err
	}
	return v.Vault.Quote(ctx, amountIn, op)
}

// Unwrap returns the wrapped vault.
func (v *RateLimited) Unwrap() Vault {
	return v.Vault
}

// LimitAll wraps every vault with the same limiter.
func LimitAll(vaults []Vault, limiter *rate.Limiter) []Vault {
	if limiter == nil {
		return vaults
	}
	out := make([]Vault, len(vaults))
	for i, v := range vaults {
		out[i] = WithRateLimit(v, limiter)
	}
	return out
}
