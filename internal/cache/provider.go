package cache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/syncx"

	"stockchat-api/pkg/market"
)

// DefaultFetchTimeout bounds a shared upstream fetch when no timeout is given.
const DefaultFetchTimeout = 30 * time.Second

// MarketProvider decorates a market.Provider with a read-through cache.
// Concurrent misses for the same key collapse into one upstream call. That
// call is detached from the caller's cancellation, so one abandoned request
// does not fail the others waiting on the same key.
type MarketProvider struct {
	name         string
	next         market.Provider
	store        Store
	ttl          TTLSet
	flight       syncx.SingleFlight
	fetchTimeout time.Duration
}

var _ market.Provider = (*MarketProvider)(nil)

// MarketOption customises a MarketProvider.
type MarketOption func(*MarketProvider)

// WithFetchTimeout bounds each shared upstream fetch by d.
func WithFetchTimeout(d time.Duration) MarketOption {
	return func(p *MarketProvider) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// NewMarketProvider wraps next. name scopes cache keys per upstream provider.
func NewMarketProvider(name string, next market.Provider, store Store, ttl TTLSet, opts ...MarketOption) *MarketProvider {
	p := &MarketProvider{
		name:         name,
		next:         next,
		store:        store,
		ttl:          ttl,
		flight:       syncx.NewSingleFlight(),
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// detach keeps ctx values such as trace ids but drops its cancellation.
func (p *MarketProvider) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
}

func (p *MarketProvider) Quote(ctx context.Context, symbol string) (*market.RawQuote, error) {
	key := QuoteKey(p.name, symbol)
	var cached market.RawQuote
	if p.load(ctx, key, &cached) {
		return &cached, nil
	}

	v, err := p.flight.Do(key, func() (any, error) {
		ctx, cancel := p.detach(ctx)
		defer cancel()
		q, err := p.next.Quote(ctx, symbol)
		if err != nil {
			return nil, err
		}
		p.save(ctx, key, q, QuoteTTL(p.ttl))
		return q, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*market.RawQuote), nil
}

func (p *MarketProvider) History(ctx context.Context, symbol string, days int, interval string) ([]market.Bar, error) {
	key := HistoryKey(p.name, symbol, days, interval)
	var cached []market.Bar
	if p.load(ctx, key, &cached) {
		return cached, nil
	}

	v, err := p.flight.Do(key, func() (any, error) {
		ctx, cancel := p.detach(ctx)
		defer cancel()
		bars, err := p.next.History(ctx, symbol, days, interval)
		if err != nil {
			return nil, err
		}
		if len(bars) > 0 {
			p.save(ctx, key, bars, HistoryTTL(p.ttl, interval))
		}
		return bars, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]market.Bar), nil
}

// load reports whether key was found and decoded. Store failures are logged
// and treated as misses.
func (p *MarketProvider) load(ctx context.Context, key string, dst any) bool {
	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		logx.WithContext(ctx).Errorf("cache get %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := msgpack.Unmarshal(raw, dst); err != nil {
		logx.WithContext(ctx).Errorf("cache decode %s: %v", key, err)
		return false
	}
	return true
}

func (p *MarketProvider) save(ctx context.Context, key string, v any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := msgpack.Marshal(v)
	if err != nil {
		logx.WithContext(ctx).Errorf("cache encode %s: %v", key, err)
		return
	}
	if err := p.store.Set(ctx, key, raw, ttl); err != nil {
		logx.WithContext(ctx).Errorf("cache set %s: %v", key, err)
	}
}
