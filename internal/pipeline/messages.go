package pipeline

import (
	"fmt"
	"strings"
)

const (
	noTickerMessage = "I couldn't find a stock ticker in your request. Please provide a valid ticker symbol, like 'AAPL' or 'MSFT'."

	notEnoughComparisonMessage = "I need at least 2 stocks with available data to build a comparison chart, and I couldn't fetch enough data for the tickers you mentioned. Please check the symbols and try again."

	tickerListFallback = "Here are some popular ticker symbols: AAPL (Apple), MSFT (Microsoft), GOOGL (Alphabet), AMZN (Amazon), NVDA (NVIDIA), META (Meta Platforms) and TSLA (Tesla). Ask me about any of them to get the latest price and analysis."

	generalFallback = "I'm here to help with stocks and financial markets. Ask me about a specific ticker such as 'AAPL', or ask a general question about investing."
)

func fetchFailedMessage(ticker string) string {
	return fmt.Sprintf("I couldn't fetch data for %s. Please check the ticker symbol and try again.", ticker)
}

func comparisonMessage(tickers []string, days int) string {
	return fmt.Sprintf("Here's a comparison of %s over the last %d days.", joinTickers(tickers), days)
}

// joinTickers renders ["A","B","C"] as "A, B and C".
func joinTickers(tickers []string) string {
	switch len(tickers) {
	case 0:
		return ""
	case 1:
		return tickers[0]
	default:
		return strings.Join(tickers[:len(tickers)-1], ", ") + " and " + tickers[len(tickers)-1]
	}
}

func generalFinanceFallback(query string) string {
	if strings.Contains(strings.ToLower(query), "ticker symbols") {
		return tickerListFallback
	}
	return generalFallback
}
