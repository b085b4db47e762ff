package journal_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockchat-api/pkg/journal"
)

func TestWriterWritesSequencedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	w, err := journal.NewWriter(dir)
	require.NoError(t, err)
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	w.WithClock(func() time.Time { return ts })

	first, err := w.Write(&journal.RunRecord{Query: "How is TSLA doing?", Tickers: []string{"TSLA"}, Branch: "tickers_found", ReplyCount: 1})
	require.NoError(t, err)
	second, err := w.Write(&journal.RunRecord{Query: "Hi!", Branch: "general_finance"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "run_20250304_050607_00001.json"), first)
	assert.Equal(t, filepath.Join(dir, "run_20250304_050607_00002.json"), second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	var got journal.RunRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 1, got.Seq)
	assert.Equal(t, []string{"TSLA"}, got.Tickers)
	assert.True(t, got.Timestamp.Equal(ts))
}

func TestWriterRejectsNil(t *testing.T) {
	w, err := journal.NewWriter(t.TempDir())
	require.NoError(t, err)
	_, err = w.Write(nil)
	assert.Error(t, err)
}
