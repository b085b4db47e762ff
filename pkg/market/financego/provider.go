// Package financego adapts github.com/piquette/finance-go to market.Provider.
package financego

import (
	"context"
	"fmt"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"stockchat-api/pkg/market"
)

// QuoteFunc and ChartFunc match the finance-go package level fetchers.
type (
	QuoteFunc func(symbol string) (*finance.Quote, error)
	ChartFunc func(params *chart.Params) *chart.Iter
)

// Provider serves quotes and bars through finance-go. The library has no
// context support, so calls run on a goroutine and are abandoned on ctx expiry.
type Provider struct {
	quote QuoteFunc
	chart ChartFunc
	now   func() time.Time
}

// Option customises the provider.
type Option func(*Provider)

// WithQuoteFunc replaces the quote fetcher.
func WithQuoteFunc(fn QuoteFunc) Option {
	return func(p *Provider) {
		if fn != nil {
			p.quote = fn
		}
	}
}

// WithChartFunc replaces the chart fetcher.
func WithChartFunc(fn ChartFunc) Option {
	return func(p *Provider) {
		if fn != nil {
			p.chart = fn
		}
	}
}

// NewProvider constructs a finance-go backed provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{quote: quote.Get, chart: chart.Get, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func init() {
	market.RegisterProvider("financego", func(string, *market.ProviderConfig) (market.Provider, error) {
		return NewProvider(), nil
	})
}

func (p *Provider) Quote(ctx context.Context, symbol string) (*market.RawQuote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	q, err := call(ctx, func() (*finance.Quote, error) { return p.quote(symbol) })
	if err != nil {
		return nil, fmt.Errorf("financego quote %s: %w", symbol, err)
	}
	if q == nil || (q.RegularMarketPrice == 0 && q.ShortName == "") {
		return nil, fmt.Errorf("%w: %s", market.ErrSymbolNotFound, symbol)
	}

	raw := &market.RawQuote{
		Symbol:    symbol,
		ShortName: q.ShortName,
		Volume:    int64(q.RegularMarketVolume),
		Currency:  q.CurrencyID,
	}
	if q.RegularMarketPrice > 0 {
		raw.RegularMarketPrice = market.Float(q.RegularMarketPrice)
	}
	if q.RegularMarketPreviousClose > 0 {
		raw.PreviousClose = market.Float(q.RegularMarketPreviousClose)
	}
	return raw, nil
}

func (p *Provider) History(ctx context.Context, symbol string, days int, interval string) ([]market.Bar, error) {
	if days <= 0 {
		return nil, fmt.Errorf("financego history: days must be positive, got %d", days)
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	end := p.now()
	start := end.AddDate(0, 0, -days)
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.Interval(interval),
	}

	bars, err := call(ctx, func() ([]market.Bar, error) {
		iter := p.chart(params)
		var out []market.Bar
		for iter.Next() {
			b := iter.Bar()
			open, _ := b.Open.Float64()
			high, _ := b.High.Float64()
			low, _ := b.Low.Float64()
			closeVal, _ := b.Close.Float64()
			out = append(out, market.Bar{
				Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
				Open:   open,
				High:   high,
				Low:    low,
				Close:  closeVal,
				Volume: int64(b.Volume),
			})
		}
		return out, iter.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("financego history %s: %w", symbol, err)
	}
	return bars, nil
}

type result[T any] struct {
	val T
	err error
}

func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn()
		ch <- result[T]{val: v, err: err}
	}()
	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
