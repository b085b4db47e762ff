package router

// Branch is the response strategy selected for a query.
type Branch int

const (
	NoTicker Branch = iota
	TickersFound
	StockComparison
	GeneralFinance
)

var branchNames = [...]string{
	NoTicker:        "no_ticker",
	TickersFound:    "tickers_found",
	StockComparison: "stock_comparison",
	GeneralFinance:  "general_finance",
}

func (b Branch) String() string {
	if b < 0 || int(b) >= len(branchNames) {
		return "unknown"
	}
	return branchNames[b]
}
