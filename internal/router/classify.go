package router

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ComparisonKeywords signal that several tickers should be charted together.
var ComparisonKeywords = []string{
	"compare", "comparison", "comparing", "vs", "versus", "against",
	"chart", "graph", "plot", "visualize", "show me", "display",
}

// FinanceKeywords mark a ticker-less query as a finance question.
var FinanceKeywords = []string{
	"stock", "market", "invest", "finance", "financial", "trading", "trade",
	"economy", "economic", "bond", "etf", "fund", "index", "dividend",
	"portfolio", "share", "equity", "crypto", "bitcoin", "inflation",
	"interest rate", "recession", "nasdaq", "dow jones", "s&p", "bull market",
	"bear market", "ipo", "earnings", "valuation", "broker", "retirement",
	"401k", "savings", "ticker", "symbol", "list", "popular",
}

// ConversationalIndicators mark greetings and open questions that the
// general finance assistant should answer.
var ConversationalIndicators = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
	"what is", "what are", "what's", "how does", "how do", "how can",
	"explain", "tell me about", "can you", "could you", "help",
	"thanks", "thank you",
}

// Classify selects the branch for query given the extracted tickers. It is
// pure; rules apply in order and the first match wins.
func Classify(query string, tickers []string) Branch {
	q := strings.ToLower(query)
	switch {
	case len(tickers) >= 2 && containsAny(q, ComparisonKeywords):
		return StockComparison
	case len(tickers) >= 1:
		return TickersFound
	case containsAny(q, FinanceKeywords) || containsIndicator(q, ConversationalIndicators):
		return GeneralFinance
	default:
		return NoTicker
	}
}

// containsAny reports whether any keyword occurs in text as a substring.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// containsIndicator is containsAny, except that single-word indicators such as
// "hi" only match as whole words so "which" or "think" stay off-topic.
func containsIndicator(text string, indicators []string) bool {
	for _, kw := range indicators {
		if isWord(kw) {
			if containsWord(text, kw) {
				return true
			}
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// containsWord reports whether word occurs in text bounded by non-alphanumerics.
func containsWord(text, word string) bool {
	for start := 0; start+len(word) <= len(text); {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		before, _ := utf8.DecodeLastRuneInString(text[:i])
		after, _ := utf8.DecodeRuneInString(text[i+len(word):])
		if !isAlnum(before) && !isAlnum(after) {
			return true
		}
		start = i + 1
	}
	return false
}

// isAlnum treats utf8.RuneError, returned at either end of the text, as a boundary.
func isAlnum(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
