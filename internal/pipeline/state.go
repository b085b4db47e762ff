package pipeline

import (
	"stockchat-api/internal/reply"
	"stockchat-api/internal/router"
)

// State is the request-scoped value threaded through the stages. Stages
// never mutate a State; each returns a new one.
type State struct {
	Query   string
	Tickers []string
	Branch  router.Branch
	Replies []reply.Item
}

// NewState starts a run for query.
func NewState(query string) State {
	return State{Query: query, Branch: router.NoTicker}
}

// WithTickers returns a copy of s carrying tickers.
func (s State) WithTickers(tickers []string) State {
	s.Tickers = append([]string(nil), tickers...)
	return s
}

// WithBranch returns a copy of s with the branch set.
func (s State) WithBranch(b router.Branch) State {
	s.Branch = b
	return s
}

// WithReplies returns a copy of s carrying replies.
func (s State) WithReplies(items []reply.Item) State {
	s.Replies = append([]reply.Item(nil), items...)
	return s
}
