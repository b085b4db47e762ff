// Package router extracts tickers from a query and picks a response branch.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockchat-api/pkg/llm"
	"stockchat-api/pkg/prompt"
)

const noneToken = "NONE"

// Router extracts tickers with an LLM and classifies queries.
type Router struct {
	llm    llm.Completer
	system string
}

// New builds a Router. The extraction system prompt is rendered once.
func New(completer llm.Completer, prompts *prompt.Set) (*Router, error) {
	if completer == nil {
		return nil, errors.New("router: completer is required")
	}
	if prompts == nil {
		return nil, errors.New("router: prompt set is required")
	}
	system, err := prompts.ExtractTickers.Render(nil)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	return &Router{llm: completer, system: system}, nil
}

// ExtractTickers asks the model for the ticker symbols in query. Errors are
// returned unchanged; callers decide how to degrade.
func (r *Router) ExtractTickers(ctx context.Context, query string) ([]string, error) {
	resp, err := r.llm.Complete(ctx, r.system, fmt.Sprintf("User Query: %q", query))
	if err != nil {
		return nil, fmt.Errorf("extract tickers: %w", err)
	}
	return ParseTickers(resp), nil
}

// ParseTickers turns a model reply like "aapl, MSFT,,aapl" into
// [AAPL MSFT]. "NONE" or an empty reply yields nil. Repeats are dropped,
// first occurrence wins.
func ParseTickers(resp string) []string {
	resp = strings.ToUpper(strings.TrimSpace(resp))
	if resp == "" || resp == noneToken {
		return nil
	}

	var tickers []string
	seen := make(map[string]struct{})
	for _, token := range strings.Split(resp, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tickers = append(tickers, token)
	}
	return tickers
}
