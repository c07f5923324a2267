package provider

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps an adapter with a token-bucket limiter so outbound
// sends respect the provider's global per-tenant rate, independent of
// per-recipient pacing delays.
type RateLimited struct {
	Adapter
	limiter *rate.Limiter
}

// RateLimit allows sendsPerMinute sustained sends with a burst of one;
// bursts would defeat the point of pacing.
func RateLimit(a Adapter, sendsPerMinute int) *RateLimited {
	return &RateLimited{
		Adapter: a,
		limiter: rate.NewLimiter(rate.Limit(float64(sendsPerMinute)/60.0), 1),
	}
}

func (r *RateLimited) Send(ctx context.Context, to string, msg Message) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.Adapter.Send(ctx, to, msg)
}
