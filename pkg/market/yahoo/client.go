package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"stockchat-api/pkg/market"
)

const (
	defaultBaseURL     = "https://query1.finance.yahoo.com"
	defaultHTTPTimeout = 10 * time.Second
	defaultMaxRetries  = 2
	defaultUserAgent   = "Mozilla/5.0 (compatible; stockchat/1.0)"
	chartPath          = "/v8/finance/chart/{symbol}"
)

// Client wraps the Yahoo Finance v8 chart endpoint.
type Client struct {
	http *resty.Client
	now  func() time.Time
}

// Option configures a new Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	now        func() time.Time
}

// WithBaseURL overrides the API host.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		if url != "" {
			o.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithUserAgent overrides the User-Agent header; Yahoo rejects empty agents.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithHTTPTimeout sets the per-request HTTP timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxRetries adjusts the retry budget for 429 and 5xx responses.
func WithMaxRetries(n int) Option {
	return func(o *clientOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithHTTPClient injects the underlying http.Client (recorders, test servers).
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithClock overrides the time source used to build history windows.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewClient constructs a Yahoo chart client.
func NewClient(opts ...Option) *Client {
	o := clientOptions{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		timeout:    defaultHTTPTimeout,
		maxRetries: defaultMaxRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(o.baseURL).
		SetTimeout(o.timeout).
		SetHeader("User-Agent", o.userAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(o.maxRetries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{http: rc, now: o.now}
}

// Quote returns the latest quote derived from the chart metadata for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*market.RawQuote, error) {
	result, err := c.chart(ctx, symbol, map[string]string{"range": "5d", "interval": "1d"})
	if err != nil {
		return nil, err
	}
	meta := result.Meta
	if meta.RegularMarketPrice == nil && meta.LongName == "" && meta.ShortName == "" {
		return nil, fmt.Errorf("%w: %s", market.ErrSymbolNotFound, symbol)
	}

	q := &market.RawQuote{
		Symbol:             strings.ToUpper(firstNonEmpty(meta.Symbol, symbol)),
		LongName:           meta.LongName,
		ShortName:          meta.ShortName,
		RegularMarketPrice: meta.RegularMarketPrice,
		PreviousClose:      previousClose(result),
		Volume:             meta.RegularMarketVolume,
		Currency:           meta.Currency,
	}
	return q, nil
}

// History returns bars for the last days calendar days at interval.
func (c *Client) History(ctx context.Context, symbol string, days int, interval string) ([]market.Bar, error) {
	if days <= 0 {
		return nil, fmt.Errorf("yahoo history: days must be positive, got %d", days)
	}
	end := c.now()
	start := end.AddDate(0, 0, -days)
	result, err := c.chart(ctx, symbol, map[string]string{
		"period1":  strconv.FormatInt(start.Unix(), 10),
		"period2":  strconv.FormatInt(end.Unix(), 10),
		"interval": interval,
	})
	if err != nil {
		return nil, err
	}
	return parseBars(result), nil
}

func (c *Client) chart(ctx context.Context, symbol string, params map[string]string) (*chartResult, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", market.ErrSymbolNotFound)
	}

	var payload chartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(params).
		SetResult(&payload).
		SetError(&payload).
		Get(chartPath)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", market.ErrSymbolNotFound, symbol)
	}
	if payload.Chart.Error != nil {
		if payload.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", market.ErrSymbolNotFound, symbol)
		}
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, payload.Chart.Error.Description)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo chart %s: unexpected status %d", symbol, resp.StatusCode())
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", market.ErrSymbolNotFound, symbol)
	}
	return &payload.Chart.Result[0], nil
}

// previousClose prefers the explicit field, then the second to last daily
// close, then the chart-relative close.
func previousClose(r *chartResult) *float64 {
	if r.Meta.PreviousClose != nil {
		return r.Meta.PreviousClose
	}
	bars := parseBars(r)
	if len(bars) >= 2 {
		return market.Float(bars[len(bars)-2].Close)
	}
	return r.Meta.ChartPreviousClose
}

// parseBars zips the columnar series, dropping rows without a close.
func parseBars(r *chartResult) []market.Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	bars := make([]market.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		closeVal := at(q.Close, i)
		if closeVal == nil {
			continue
		}
		bar := market.Bar{
			Time:  time.Unix(ts, 0).UTC(),
			Close: *closeVal,
			Open:  valueOr(at(q.Open, i), *closeVal),
			High:  valueOr(at(q.High, i), *closeVal),
			Low:   valueOr(at(q.Low, i), *closeVal),
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		bars = append(bars, bar)
	}
	return bars
}

func at(series []*float64, i int) *float64 {
	if i < len(series) {
		return series[i]
	}
	return nil
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
