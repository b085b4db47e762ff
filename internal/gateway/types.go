package gateway

import "time"

// Quote is the normalised view of one ticker. Derived fields are always
// recomputed from provider fields and rounded to two decimals.
type Quote struct {
	Ticker             string    `json:"ticker"`
	CompanyName        string    `json:"companyName"`
	CurrentPrice       float64   `json:"currentPrice"`
	PreviousClose      *float64  `json:"previousClose,omitempty"`
	DailyChange        float64   `json:"dailyChange"`
	DailyChangePercent float64   `json:"dailyChangePercent"`
	Price24hAgo        *float64  `json:"price24hAgo,omitempty"`
	Change24h          float64   `json:"change24h"`
	ChangePercent24h   float64   `json:"changePercent24h"`
	High24h            float64   `json:"high24h"`
	Low24h             float64   `json:"low24h"`
	Volume             int64     `json:"volume"`
	MarketCap          *float64  `json:"marketCap,omitempty"`
	Sector             string    `json:"sector,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// HistoryBar is one OHLCV row keyed by calendar day.
type HistoryBar struct {
	Date   string  `json:"date" msgpack:"date"`
	Open   float64 `json:"open" msgpack:"open"`
	High   float64 `json:"high" msgpack:"high"`
	Low    float64 `json:"low" msgpack:"low"`
	Close  float64 `json:"close" msgpack:"close"`
	Volume int64   `json:"volume" msgpack:"volume"`
}
