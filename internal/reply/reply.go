// Package reply defines the unit of assistant output shared by the pipeline,
// the session store and the HTTP surface.
package reply

import "stockchat-api/internal/gateway"

// Item is one assistant reply. Either the single-stock fields (Price,
// ChangePercent, MonthlyData) or ComparisonData is populated, never both.
type Item struct {
	Message        string               `json:"message"`
	Price          *float64             `json:"price,omitempty"`
	ChangePercent  *float64             `json:"changePercent,omitempty"`
	MonthlyData    []gateway.HistoryBar `json:"monthlyData,omitempty"`
	ComparisonData []ComparisonEntry    `json:"comparisonData,omitempty"`
}

// ComparisonEntry is one ticker's series in a comparison chart.
type ComparisonEntry struct {
	Ticker             string               `json:"ticker"`
	CurrentPrice       float64              `json:"currentPrice"`
	DailyChangePercent float64              `json:"dailyChangePercent"`
	Data               []gateway.HistoryBar `json:"data"`
}

// Text builds a message-only item.
func Text(msg string) Item {
	return Item{Message: msg}
}

// IsComparison reports whether the item carries comparison data.
func (i Item) IsComparison() bool {
	return len(i.ComparisonData) > 0
}
