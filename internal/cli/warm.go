package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"stockchat-api/internal/config"
	"stockchat-api/internal/gateway"
)

// ErrNoSharedCache is returned by warm when the market cache lives only in
// this process and no server could read what it fetches.
var ErrNoSharedCache = errors.New("warm: Redis is not configured, the in-process cache is not shared with the server")

// RequireSharedCache fails unless cfg points the market cache at Redis.
func RequireSharedCache(cfg *config.Config) error {
	if cfg == nil || strings.TrimSpace(cfg.Redis.Host) == "" {
		return ErrNoSharedCache
	}
	return nil
}

// MarketData is what the warmer fetches through.
type MarketData interface {
	FetchQuote(ctx context.Context, ticker string) (*gateway.Quote, error)
	FetchMonthlyHistory(ctx context.Context, ticker string) ([]gateway.HistoryBar, error)
}

// WarmOnce fetches the quote and chart window of every symbol so that the
// market cache holds them. It returns the symbols that failed.
func WarmOnce(ctx context.Context, md MarketData, symbols []string, timeout time.Duration) []string {
	var failed []string
	for _, sym := range symbols {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		_, qErr := md.FetchQuote(callCtx, sym)
		_, hErr := md.FetchMonthlyHistory(callCtx, sym)
		cancel()
		if qErr != nil || hErr != nil {
			logx.WithContext(ctx).Infof("[warm] %s failed: quote=%v history=%v", sym, qErr, hErr)
			failed = append(failed, sym)
		}
	}
	return failed
}

// RunWarmer repeats WarmOnce every interval until ctx is done.
func RunWarmer(ctx context.Context, md MarketData, symbols []string, interval, timeout time.Duration) {
	logx.Infof("[warm] starting, symbols=%s interval=%s", strings.Join(symbols, ","), interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		failed := WarmOnce(ctx, md, symbols, timeout)
		logx.Infof("[warm] cycle done: %d ok, %d failed", len(symbols)-len(failed), len(failed))
		select {
		case <-ctx.Done():
			logx.Info("[warm] stopping")
			return
		case <-ticker.C:
		}
	}
}

// ParseSymbols splits a comma, semicolon or space separated list into
// unique uppercase symbols.
func ParseSymbols(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.ToUpper(strings.TrimSpace(field))
		if field == "" {
			continue
		}
		if _, exists := seen[field]; exists {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	return out
}
