package svc

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockchat-api/internal/pipeline"
	"stockchat-api/internal/router"
	"stockchat-api/pkg/journal"
)

type fixedRunner struct{ state pipeline.State }

func (f fixedRunner) Run(context.Context, string) pipeline.State { return f.state }

func TestJournalRunnerRecordsRuns(t *testing.T) {
	dir := t.TempDir()
	writer, err := journal.NewWriter(dir)
	require.NoError(t, err)

	want := pipeline.NewState("compare AAPL and MSFT").
		WithTickers([]string{"AAPL", "MSFT"}).
		WithBranch(router.StockComparison)
	runner := newJournalRunner(fixedRunner{state: want}, writer)

	got := runner.Run(context.Background(), "compare AAPL and MSFT")
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "_00001.json")
}

func TestJournalRunnerWithoutWriterIsPassthrough(t *testing.T) {
	inner := fixedRunner{}
	assert.Equal(t, inner, newJournalRunner(inner, nil))
}

func TestNewServiceContextCreatesJournalDir(t *testing.T) {
	c := testConfig(t, "dev")
	c.Pipeline.JournalDir = t.TempDir() + "/journal"
	svc, err := NewServiceContext(c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	info, err := os.Stat(c.Pipeline.JournalDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
