// Package gateway normalises market provider data into quotes and chart
// history with derived change metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"stockchat-api/pkg/market"
)

var (
	// ErrQuoteNotFound means the provider had no usable quote for a ticker.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrHistoryNotFound means the provider returned no bars for the window.
	ErrHistoryNotFound = errors.New("history not found")
)

// barsPer24h is the number of hourly bars treated as one day.
const barsPer24h = 24

// Config sets the windows used for 24h statistics and charts.
type Config struct {
	ShortDays     int
	ShortInterval string
	ChartDays     int
	ChartInterval string
}

// DefaultConfig matches the upstream defaults: 2 days of hourly bars for
// 24h stats and 30 days of daily bars for charts.
func DefaultConfig() Config {
	return Config{ShortDays: 2, ShortInterval: "1h", ChartDays: 30, ChartInterval: "1d"}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ShortDays <= 0 {
		c.ShortDays = d.ShortDays
	}
	if strings.TrimSpace(c.ShortInterval) == "" {
		c.ShortInterval = d.ShortInterval
	}
	if c.ChartDays <= 0 {
		c.ChartDays = d.ChartDays
	}
	if strings.TrimSpace(c.ChartInterval) == "" {
		c.ChartInterval = d.ChartInterval
	}
	return c
}

// Gateway fetches and normalises market data.
type Gateway struct {
	provider market.Provider
	cfg      Config
	now      func() time.Time
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// New builds a Gateway over provider.
func New(provider market.Provider, cfg Config, opts ...Option) *Gateway {
	g := &Gateway{provider: provider, cfg: cfg.withDefaults(), now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective windows.
func (g *Gateway) Config() Config { return g.cfg }

// FetchQuote returns the normalised quote for ticker or ErrQuoteNotFound.
// Provider failures of any kind, timeouts included, count as not found.
func (g *Gateway) FetchQuote(ctx context.Context, ticker string) (*Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	raw, err := g.provider.Quote(ctx, ticker)
	if err != nil {
		logx.WithContext(ctx).Infof("quote %s unavailable: %v", ticker, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrQuoteNotFound, ticker, err)
	}
	if _, ok := raw.CurrentPrice(); !ok {
		return nil, fmt.Errorf("%w: %s: no price", ErrQuoteNotFound, ticker)
	}

	bars, err := g.provider.History(ctx, ticker, g.cfg.ShortDays, g.cfg.ShortInterval)
	if err != nil {
		logx.WithContext(ctx).Infof("short history %s unavailable: %v", ticker, err)
		bars = nil
	}
	sortBars(bars)

	q := BuildQuote(ticker, raw, bars)
	q.Timestamp = g.now()
	return q, nil
}

// FetchMonthlyHistory returns the chart window for ticker.
func (g *Gateway) FetchMonthlyHistory(ctx context.Context, ticker string) ([]HistoryBar, error) {
	return g.FetchHistory(ctx, ticker, g.cfg.ChartDays, g.cfg.ChartInterval)
}

// FetchHistory returns bars for an arbitrary window, ascending by date, or
// ErrHistoryNotFound when the provider has none.
func (g *Gateway) FetchHistory(ctx context.Context, ticker string, days int, interval string) ([]HistoryBar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	bars, err := g.provider.History(ctx, ticker, days, interval)
	if err != nil {
		logx.WithContext(ctx).Infof("history %s unavailable: %v", ticker, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrHistoryNotFound, ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrHistoryNotFound, ticker)
	}
	sortBars(bars)

	out := make([]HistoryBar, 0, len(bars))
	for _, b := range bars {
		out = append(out, HistoryBar{
			Date:   b.Time.Format("2006-01-02"),
			Open:   Round2(b.Open),
			High:   Round2(b.High),
			Low:    Round2(b.Low),
			Close:  Round2(b.Close),
			Volume: b.Volume,
		})
	}
	return out, nil
}

// BuildQuote derives change metrics from raw provider fields and the short
// window bars (ascending). The caller guarantees raw has a current price.
func BuildQuote(ticker string, raw *market.RawQuote, bars []market.Bar) *Quote {
	current, _ := raw.CurrentPrice()
	q := &Quote{
		Ticker:        ticker,
		CompanyName:   raw.DisplayName(),
		CurrentPrice:  current,
		PreviousClose: raw.PreviousClose,
		Volume:        raw.Volume,
		MarketCap:     raw.MarketCap,
		Sector:        raw.Sector,
	}
	if q.CompanyName == "" {
		q.CompanyName = ticker
	}

	if prev := raw.PreviousClose; prev != nil && *prev != 0 && current != 0 {
		change := current - *prev
		q.DailyChange = Round2(change)
		q.DailyChangePercent = Round2(change / *prev * 100)
	}

	if len(bars) == 0 {
		q.High24h = Round2(current)
		q.Low24h = Round2(current)
		return q
	}

	ref := bars[0].Close
	if len(bars) >= barsPer24h {
		ref = bars[len(bars)-barsPer24h].Close
	}
	q.Price24hAgo = market.Float(Round2(ref))
	if ref != 0 && current != 0 {
		change := current - ref
		q.Change24h = Round2(change)
		q.ChangePercent24h = Round2(change / ref * 100)
	}

	window := bars
	if len(window) > barsPer24h {
		window = window[len(window)-barsPer24h:]
	}
	high, low := window[0].High, window[0].Low
	for _, b := range window[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	q.High24h = Round2(high)
	q.Low24h = Round2(low)
	return q
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func sortBars(bars []market.Bar) {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
}
