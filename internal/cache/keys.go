package cache

import (
	"strconv"
	"strings"
	"time"

	"stockchat-api/internal/config"
)

// Namespace is the key prefix for the stockchat application.
const Namespace = "stockchat"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
// Negative values disable caching for that class.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 30*time.Second),
		Medium: durationOrDefault(cfg.Medium, 5*time.Minute),
		Long:   durationOrDefault(cfg.Long, time.Hour),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// QuoteKey caches the raw provider quote for a symbol.
func QuoteKey(provider, symbol string) string {
	return formatKey("quote", provider, strings.ToUpper(symbol))
}

// HistoryKey caches a bar window; days and interval are part of the identity.
func HistoryKey(provider, symbol string, days int, interval string) string {
	return formatKey("history", provider, strings.ToUpper(symbol), strconv.Itoa(days), interval)
}

// QuoteTTL keeps quotes short-lived so prices stay close to live.
func QuoteTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// HistoryTTL picks a bucket by bar granularity: intraday windows move faster
// than daily ones.
func HistoryTTL(ttl TTLSet, interval string) time.Duration {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "1d", "5d", "1wk", "1mo", "3mo":
		return ttl.Duration(TTLLong)
	default:
		return ttl.Duration(TTLMedium)
	}
}
