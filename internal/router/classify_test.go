package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRuleOrder(t *testing.T) {
	two := []string{"AAPL", "MSFT"}
	tests := []struct {
		name    string
		query   string
		tickers []string
		want    Branch
	}{
		{name: "comparison", query: "compare AAPL and MSFT", tickers: two, want: StockComparison},
		{name: "two tickers without comparison words", query: "how are AAPL and MSFT doing", tickers: two, want: TickersFound},
		{name: "comparison word with one ticker", query: "chart AAPL", tickers: []string{"AAPL"}, want: TickersFound},
		{name: "single ticker", query: "What about TSLA stock?", tickers: []string{"TSLA"}, want: TickersFound},
		{name: "greeting", query: "Hi!", want: GeneralFinance},
		{name: "finance question", query: "Should I buy an ETF?", want: GeneralFinance},
		{name: "gibberish", query: "asdfghjkl", want: NoTicker},
		{name: "empty", query: "", want: NoTicker},
		{name: "case insensitive", query: "AAPL VERSUS MSFT", tickers: two, want: StockComparison},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query, tt.tickers))
		})
	}
}

func TestClassifyComparisonKeywords(t *testing.T) {
	for _, kw := range ComparisonKeywords {
		t.Run(kw, func(t *testing.T) {
			query := "AAPL " + strings.ToUpper(kw) + " NVDA"
			assert.Equal(t, StockComparison, Classify(query, []string{"AAPL", "NVDA"}))
			assert.Equal(t, TickersFound, Classify(query, []string{"AAPL"}))
		})
	}
}

func TestClassifyFinanceKeywords(t *testing.T) {
	for _, kw := range FinanceKeywords {
		t.Run(kw, func(t *testing.T) {
			assert.Equal(t, GeneralFinance, Classify("qqq "+kw+" zzz", nil))
		})
	}
}

func TestClassifyConversationalIndicators(t *testing.T) {
	for _, kw := range ConversationalIndicators {
		t.Run(kw, func(t *testing.T) {
			assert.Equal(t, GeneralFinance, Classify(strings.ToUpper(kw)+" zzz", nil))
		})
	}
}

func TestClassifyIndicatorsMatchWholeWords(t *testing.T) {
	tests := []struct {
		query string
		want  Branch
	}{
		{query: "I think pizza is great", want: NoTicker},
		{query: "which way to the beach", want: NoTicker},
		{query: "the helpdesk is closed", want: NoTicker},
		{query: "hi, anyone there?", want: GeneralFinance},
		{query: "Hey!", want: GeneralFinance},
		{query: "can you help", want: GeneralFinance},
		{query: "what's new", want: GeneralFinance},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query, nil))
		})
	}
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("hi", "hi"))
	assert.True(t, containsWord("oh hi there", "hi"))
	assert.True(t, containsWord("this, hi", "hi"))
	assert.False(t, containsWord("this", "hi"))
	assert.False(t, containsWord("hi5", "hi"))
	assert.False(t, containsWord("", "hi"))
}

func TestClassifyIsTotal(t *testing.T) {
	queries := []string{"", "x", "compare", "hello", "stock", "zzz"}
	tickerSets := [][]string{nil, {"A"}, {"A", "B"}, {"A", "B", "C"}}
	for _, q := range queries {
		for _, ts := range tickerSets {
			b := Classify(q, ts)
			assert.Contains(t, []Branch{NoTicker, TickersFound, StockComparison, GeneralFinance}, b)
			assert.Equal(t, b, Classify(q, ts))
		}
	}
}

func TestBranchString(t *testing.T) {
	assert.Equal(t, "no_ticker", NoTicker.String())
	assert.Equal(t, "tickers_found", TickersFound.String())
	assert.Equal(t, "stock_comparison", StockComparison.String())
	assert.Equal(t, "general_finance", GeneralFinance.String())
	assert.Equal(t, "unknown", Branch(42).String())
}
