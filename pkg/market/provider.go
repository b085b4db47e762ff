package market

import (
	"context"
	"errors"
	"time"
)

// ErrSymbolNotFound indicates the provider has no usable data for the symbol.
var ErrSymbolNotFound = errors.New("market: symbol not found")

// Provider exposes raw equity market data. Implementations return provider
// fields as reported; normalisation and derived metrics live with callers.
type Provider interface {
	// Quote returns the latest quote fields for symbol.
	Quote(ctx context.Context, symbol string) (*RawQuote, error)
	// History returns bars covering the last days calendar days at interval
	// (e.g. "1h", "1d"), ordered oldest to newest.
	History(ctx context.Context, symbol string, days int, interval string) ([]Bar, error)
}

// RawQuote carries provider-reported quote fields. Optional values are nil
// when the provider did not report them.
type RawQuote struct {
	Symbol    string
	LongName  string
	ShortName string
	// Price is the primary current price field; RegularMarketPrice is the fallback.
	Price              *float64
	RegularMarketPrice *float64
	PreviousClose      *float64
	Volume             int64
	MarketCap          *float64
	Sector             string
	Currency           string
}

// DisplayName returns the best available company name, falling back to the symbol.
func (q *RawQuote) DisplayName() string {
	switch {
	case q == nil:
		return ""
	case q.LongName != "":
		return q.LongName
	case q.ShortName != "":
		return q.ShortName
	default:
		return q.Symbol
	}
}

// CurrentPrice resolves the current price with primary-to-fallback precedence.
func (q *RawQuote) CurrentPrice() (float64, bool) {
	if q == nil {
		return 0, false
	}
	if q.Price != nil {
		return *q.Price, true
	}
	if q.RegularMarketPrice != nil {
		return *q.RegularMarketPrice, true
	}
	return 0, false
}

// Bar is one OHLCV record.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Float returns a pointer to v; convenience for building RawQuote values.
func Float(v float64) *float64 { return &v }

// WithTimeout bounds every call on p by d. A non-positive d returns p as is.
func WithTimeout(p Provider, d time.Duration) Provider {
	if p == nil || d <= 0 {
		return p
	}
	return &timeoutProvider{next: p, timeout: d}
}

type timeoutProvider struct {
	next    Provider
	timeout time.Duration
}

func (t *timeoutProvider) Quote(ctx context.Context, symbol string) (*RawQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Quote(ctx, symbol)
}

func (t *timeoutProvider) History(ctx context.Context, symbol string, days int, interval string) ([]Bar, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.History(ctx, symbol, days, interval)
}
