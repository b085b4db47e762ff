// Package markettest provides an in-memory market.Provider for tests.
package markettest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"stockchat-api/pkg/market"
)

// Provider serves canned quotes and bars keyed by symbol and interval.
type Provider struct {
	mu     sync.Mutex
	quotes map[string]*market.RawQuote
	bars   map[string][]market.Bar
	errs   map[string]error
	Calls  []string
}

// New returns an empty provider; unknown symbols yield market.ErrSymbolNotFound.
func New() *Provider {
	return &Provider{
		quotes: make(map[string]*market.RawQuote),
		bars:   make(map[string][]market.Bar),
		errs:   make(map[string]error),
	}
}

// SetQuote registers a quote for symbol.
func (p *Provider) SetQuote(q *market.RawQuote) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes[strings.ToUpper(q.Symbol)] = q
	return p
}

// SetBars registers bars for symbol at interval.
func (p *Provider) SetBars(symbol, interval string, bars []market.Bar) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bars[barKey(symbol, interval)] = bars
	return p
}

// SetError makes every call for symbol fail with err.
func (p *Provider) SetError(symbol string, err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[strings.ToUpper(symbol)] = err
	return p
}

func (p *Provider) Quote(ctx context.Context, symbol string) (*market.RawQuote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	symbol = strings.ToUpper(symbol)
	p.Calls = append(p.Calls, "quote:"+symbol)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.errs[symbol]; err != nil {
		return nil, err
	}
	q, ok := p.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", market.ErrSymbolNotFound, symbol)
	}
	cp := *q
	return &cp, nil
}

func (p *Provider) History(ctx context.Context, symbol string, days int, interval string) ([]market.Bar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	symbol = strings.ToUpper(symbol)
	p.Calls = append(p.Calls, fmt.Sprintf("history:%s:%d:%s", symbol, days, interval))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.errs[symbol]; err != nil {
		return nil, err
	}
	bars := p.bars[barKey(symbol, interval)]
	return append([]market.Bar(nil), bars...), nil
}

func barKey(symbol, interval string) string {
	return strings.ToUpper(symbol) + "|" + interval
}

// DailyBars builds n daily bars ending on end with closes start, start+step, ...
func DailyBars(end time.Time, n int, start, step float64) []market.Bar {
	bars := make([]market.Bar, n)
	for i := 0; i < n; i++ {
		c := start + float64(i)*step
		bars[i] = market.Bar{
			Time:   end.AddDate(0, 0, i-n+1),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: int64(1000 * (i + 1)),
		}
	}
	return bars
}

// HourlyBars builds n hourly bars ending on end with the given closes pattern.
func HourlyBars(end time.Time, closes []float64) []market.Bar {
	n := len(closes)
	bars := make([]market.Bar, n)
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:  end.Add(time.Duration(i-n+1) * time.Hour),
			Open:  c,
			High:  c + 0.5,
			Low:   c - 0.5,
			Close: c,
		}
	}
	return bars
}
