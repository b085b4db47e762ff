package yahoo

// chartResponse mirrors the v8 chart endpoint payload. Series values are
// pointers because Yahoo emits null for bars without trades.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol               string   `json:"symbol"`
	Currency             string   `json:"currency"`
	LongName             string   `json:"longName"`
	ShortName            string   `json:"shortName"`
	InstrumentType       string   `json:"instrumentType"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	PreviousClose        *float64 `json:"previousClose"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	RegularMarketVolume  int64    `json:"regularMarketVolume"`
	RegularMarketTime    int64    `json:"regularMarketTime"`
	ExchangeTimezoneName string   `json:"exchangeTimezoneName"`
}

type indicators struct {
	Quote []ohlcv `json:"quote"`
}

type ohlcv struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
