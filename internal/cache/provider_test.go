package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockchat-api/internal/config"
	"stockchat-api/pkg/market"
)

type countingProvider struct {
	quotes    atomic.Int32
	histories atomic.Int32
	err       error
}

func (c *countingProvider) Quote(_ context.Context, symbol string) (*market.RawQuote, error) {
	c.quotes.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &market.RawQuote{Symbol: symbol, LongName: "Apple Inc.", Price: market.Float(190.5)}, nil
}

func (c *countingProvider) History(_ context.Context, _ string, days int, _ string) ([]market.Bar, error) {
	c.histories.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	bars := make([]market.Bar, days)
	for i := range bars {
		bars[i] = market.Bar{Time: time.Date(2025, 1, i+1, 0, 0, 0, 0, time.UTC), Close: float64(100 + i), Volume: int64(i)}
	}
	return bars, nil
}

func newMemory(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(t.Name(), time.Minute)
	require.NoError(t, err)
	return store
}

func TestMarketProviderCachesQuote(t *testing.T) {
	upstream := &countingProvider{}
	p := NewMarketProvider("yahoo", upstream, newMemory(t), NewTTLSet(config.CacheTTL{}))
	ctx := context.Background()

	first, err := p.Quote(ctx, "aapl")
	require.NoError(t, err)
	second, err := p.Quote(ctx, "AAPL")
	require.NoError(t, err)

	assert.Equal(t, int32(1), upstream.quotes.Load())
	assert.Equal(t, first.LongName, second.LongName)
	require.NotNil(t, second.Price)
	assert.InDelta(t, 190.5, *second.Price, 1e-9)
}

func TestMarketProviderCachesHistoryPerWindow(t *testing.T) {
	upstream := &countingProvider{}
	p := NewMarketProvider("yahoo", upstream, newMemory(t), NewTTLSet(config.CacheTTL{}))
	ctx := context.Background()

	bars, err := p.History(ctx, "MSFT", 3, "1d")
	require.NoError(t, err)
	require.Len(t, bars, 3)

	again, err := p.History(ctx, "MSFT", 3, "1d")
	require.NoError(t, err)
	assert.True(t, bars[2].Time.Equal(again[2].Time))
	assert.Equal(t, int32(1), upstream.histories.Load())

	_, err = p.History(ctx, "MSFT", 2, "1h")
	require.NoError(t, err)
	assert.Equal(t, int32(2), upstream.histories.Load())
}

func TestMarketProviderDoesNotCacheErrors(t *testing.T) {
	upstream := &countingProvider{err: market.ErrSymbolNotFound}
	p := NewMarketProvider("yahoo", upstream, newMemory(t), NewTTLSet(config.CacheTTL{}))

	for i := 0; i < 2; i++ {
		_, err := p.Quote(context.Background(), "ZZZZ")
		require.True(t, errors.Is(err, market.ErrSymbolNotFound))
	}
	assert.Equal(t, int32(2), upstream.quotes.Load())
}

func TestMarketProviderDisabledTTL(t *testing.T) {
	upstream := &countingProvider{}
	p := NewMarketProvider("yahoo", upstream, newMemory(t), NewTTLSet(config.CacheTTL{Short: -1}))

	for i := 0; i < 2; i++ {
		_, err := p.Quote(context.Background(), "AAPL")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), upstream.quotes.Load())
}

func TestKeysAndTTLs(t *testing.T) {
	assert.Equal(t, "stockchat:quote:yahoo:AAPL", QuoteKey("yahoo", "aapl"))
	assert.Equal(t, "stockchat:history:yahoo:TSLA:30:1d", HistoryKey("yahoo", "tsla", 30, "1d"))
	assert.Equal(t, "stockchat:quote:AAPL", QuoteKey(" ", "AAPL"))

	ttl := NewTTLSet(config.CacheTTL{Short: 5, Medium: 0, Long: -1})
	assert.Equal(t, 5*time.Second, QuoteTTL(ttl))
	assert.Equal(t, 5*time.Minute, HistoryTTL(ttl, "1h"))
	assert.Equal(t, time.Duration(0), HistoryTTL(ttl, "1d"))
}

// gatedProvider blocks each call until release is closed and reports the
// state of the context it was handed.
type gatedProvider struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedProvider) Quote(ctx context.Context, symbol string) (*market.RawQuote, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
	}
	<-g.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &market.RawQuote{Symbol: symbol, Price: market.Float(42)}, nil
}

func (g *gatedProvider) History(context.Context, string, int, string) ([]market.Bar, error) {
	return nil, nil
}

func TestMarketProviderSharedFetchSurvivesCallerCancel(t *testing.T) {
	upstream := &gatedProvider{entered: make(chan struct{}), release: make(chan struct{})}
	p := NewMarketProvider("gated", upstream, newMemory(t), NewTTLSet(config.CacheTTL{}), WithFetchTimeout(5*time.Second))

	first, cancel := context.WithCancel(context.Background())
	type result struct {
		q   *market.RawQuote
		err error
	}
	firstDone := make(chan result, 1)
	go func() {
		q, err := p.Quote(first, "AAPL")
		firstDone <- result{q, err}
	}()
	<-upstream.entered

	secondDone := make(chan result, 1)
	go func() {
		q, err := p.Quote(context.Background(), "AAPL")
		secondDone <- result{q, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	close(upstream.release)

	for _, ch := range []chan result{firstDone, secondDone} {
		select {
		case r := <-ch:
			require.NoError(t, r.err)
			assert.Equal(t, 42.0, *r.q.Price)
		case <-time.After(2 * time.Second):
			t.Fatal("quote did not return")
		}
	}
}

func TestMarketProviderFetchTimeoutBoundsUpstream(t *testing.T) {
	upstream := &gatedProvider{entered: make(chan struct{}), release: make(chan struct{})}
	p := NewMarketProvider("gated", &ctxBlocking{upstream}, newMemory(t), NewTTLSet(config.CacheTTL{}), WithFetchTimeout(20*time.Millisecond))

	_, err := p.Quote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ctxBlocking waits for its context instead of a release signal.
type ctxBlocking struct{ *gatedProvider }

func (c *ctxBlocking) Quote(ctx context.Context, _ string) (*market.RawQuote, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
