package financego

import (
	"context"
	"errors"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockchat-api/pkg/market"
)

func TestProviderQuote(t *testing.T) {
	p := NewProvider(WithQuoteFunc(func(symbol string) (*finance.Quote, error) {
		assert.Equal(t, "MSFT", symbol)
		return &finance.Quote{
			ShortName:                  "Microsoft Corporation",
			RegularMarketPrice:         410.25,
			RegularMarketPreviousClose: 405.0,
			RegularMarketVolume:        2000,
		}, nil
	}))

	q, err := p.Quote(context.Background(), " msft ")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", q.Symbol)
	assert.Equal(t, "Microsoft Corporation", q.DisplayName())
	price, ok := q.CurrentPrice()
	require.True(t, ok)
	assert.InDelta(t, 410.25, price, 1e-9)
	assert.InDelta(t, 405.0, *q.PreviousClose, 1e-9)
	assert.Equal(t, int64(2000), q.Volume)
}

func TestProviderQuoteNotFound(t *testing.T) {
	p := NewProvider(WithQuoteFunc(func(string) (*finance.Quote, error) { return nil, nil }))
	_, err := p.Quote(context.Background(), "ZZZZ")
	require.ErrorIs(t, err, market.ErrSymbolNotFound)

	p = NewProvider(WithQuoteFunc(func(string) (*finance.Quote, error) { return nil, errors.New("remote down") }))
	_, err = p.Quote(context.Background(), "AAPL")
	require.ErrorContains(t, err, "remote down")
}

func TestProviderHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	p := NewProvider(WithQuoteFunc(func(string) (*finance.Quote, error) {
		<-release
		return nil, nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Quote(ctx, "AAPL")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProviderHistoryRejectsEmptyWindow(t *testing.T) {
	_, err := NewProvider().History(context.Background(), "AAPL", 0, "1d")
	require.Error(t, err)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, market.RegisteredTypes(), "financego")
}
