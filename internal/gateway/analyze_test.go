package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeMovement(t *testing.T) {
	tests := []struct {
		name  string
		quote *Quote
		want  string
	}{
		{
			name:  "nil quote",
			quote: nil,
			want:  MissingDataReasoning,
		},
		{
			name:  "zero price",
			quote: &Quote{Ticker: "X"},
			want:  MissingDataReasoning,
		},
		{
			name: "up and volatile with 24h move",
			quote: &Quote{
				CurrentPrice: 100, DailyChange: 2.5, DailyChangePercent: 2.56,
				Change24h: -1.2, ChangePercent24h: -1.19, High24h: 102, Low24h: 97,
			},
			want: "The stock is trading up today, having gained $2.50 (2.56%) since yesterday's close. " +
				"Over the last 24 hours, it has moved $1.20 (1.19%). " +
				"The trading range in the last 24 hours was between $97.00 and $102.00, indicating volatile trading conditions.",
		},
		{
			name: "down and stable",
			quote: &Quote{
				CurrentPrice: 200, DailyChange: -1, DailyChangePercent: -0.5, High24h: 201, Low24h: 199,
			},
			want: "The stock is trading down today, having lost $1.00 (0.50%) since yesterday's close. " +
				"The trading range in the last 24 hours was between $199.00 and $201.00, indicating stable trading conditions.",
		},
		{
			name:  "flat",
			quote: &Quote{CurrentPrice: 50, High24h: 50, Low24h: 50},
			want: "The stock is trading flat today, having remained steady at $0.00 (0.00%) since yesterday's close. " +
				"The trading range in the last 24 hours was between $50.00 and $50.00, indicating stable trading conditions.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeMovement(tt.quote))
		})
	}
}

func TestAnalyzeMovementIdempotent(t *testing.T) {
	q := &Quote{CurrentPrice: 123.45, DailyChange: 0.55, DailyChangePercent: 0.45, Change24h: 0.3, ChangePercent24h: 0.24, High24h: 124, Low24h: 122}
	assert.Equal(t, AnalyzeMovement(q), AnalyzeMovement(q))
}

func TestVolatilityBoundary(t *testing.T) {
	// exactly 2% is not volatile.
	assert.Equal(t, "stable", Volatility(&Quote{CurrentPrice: 100, High24h: 101, Low24h: 99}))
	assert.Equal(t, "volatile", Volatility(&Quote{CurrentPrice: 100, High24h: 101.01, Low24h: 99}))
}
