package gateway

import (
	"fmt"
	"math"
	"strings"
)

// MissingDataReasoning is returned when a quote has no usable price.
const MissingDataReasoning = "Unable to analyze price movement due to missing data."

// volatilityThreshold is the 24h range as a fraction of price above which
// trading is called volatile.
const volatilityThreshold = 0.02

// Trend classifies the sign of the daily change.
func Trend(q *Quote) string {
	switch {
	case q.DailyChange > 0:
		return "up"
	case q.DailyChange < 0:
		return "down"
	default:
		return "flat"
	}
}

// Volatility reports "volatile" or "stable" from the 24h range.
func Volatility(q *Quote) string {
	if q.CurrentPrice != 0 && (q.High24h-q.Low24h)/q.CurrentPrice > volatilityThreshold {
		return "volatile"
	}
	return "stable"
}

// AnalyzeMovement renders a deterministic one to three sentence summary of
// the quote's daily and 24h movement.
func AnalyzeMovement(q *Quote) string {
	if q == nil || q.CurrentPrice == 0 {
		return MissingDataReasoning
	}

	var direction string
	switch Trend(q) {
	case "up":
		direction = "gained"
	case "down":
		direction = "lost"
	default:
		direction = "remained steady at"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The stock is trading %s today, having %s $%.2f (%.2f%%) since yesterday's close. ",
		Trend(q), direction, math.Abs(q.DailyChange), math.Abs(q.DailyChangePercent))
	if q.Change24h != 0 {
		fmt.Fprintf(&b, "Over the last 24 hours, it has moved $%.2f (%.2f%%). ",
			math.Abs(q.Change24h), math.Abs(q.ChangePercent24h))
	}
	fmt.Fprintf(&b, "The trading range in the last 24 hours was between $%.2f and $%.2f, indicating %s trading conditions.",
		q.Low24h, q.High24h, Volatility(q))
	return b.String()
}
