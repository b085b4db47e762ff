package svc

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"stockchat-api/internal/pipeline"
	"stockchat-api/internal/session"
	"stockchat-api/pkg/journal"
)

// journalRunner records every pipeline run before handing the state back.
// Journal write failures are logged and never fail the turn.
type journalRunner struct {
	next   session.Runner
	writer *journal.Writer
}

func newJournalRunner(next session.Runner, writer *journal.Writer) session.Runner {
	if writer == nil {
		return next
	}
	return &journalRunner{next: next, writer: writer}
}

func (j *journalRunner) Run(ctx context.Context, query string) pipeline.State {
	start := time.Now()
	state := j.next.Run(ctx, query)
	rec := &journal.RunRecord{
		Timestamp:  start,
		Query:      query,
		Tickers:    state.Tickers,
		Branch:     state.Branch.String(),
		ReplyCount: len(state.Replies),
		Replies:    state.Replies,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if _, err := j.writer.Write(rec); err != nil {
		logx.WithContext(ctx).Errorf("journal run: %v", err)
	}
	return state
}
