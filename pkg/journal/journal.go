package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunRecord captures one end-to-end pipeline run for offline inspection.
type RunRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Seq        int       `json:"seq"`
	Query      string    `json:"query"`
	Tickers    []string  `json:"tickers,omitempty"`
	Branch     string    `json:"branch"`
	ReplyCount int       `json:"reply_count"`
	Replies    any       `json:"replies,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// Writer persists run records to a directory, one JSON file per run.
type Writer struct {
	dir   string
	nowFn func() time.Time

	mu  sync.Mutex
	seq int
}

// NewWriter creates dir when missing.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "journal"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create %s: %w", dir, err)
	}
	return &Writer{dir: dir, nowFn: time.Now}, nil
}

// WithClock overrides the clock used to stamp records without a timestamp.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	if now != nil {
		w.nowFn = now
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Write stores rec and returns the file path.
func (w *Writer) Write(rec *RunRecord) (string, error) {
	if rec == nil {
		return "", errors.New("journal: nil record")
	}

	w.mu.Lock()
	w.seq++
	rec.Seq = w.seq
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.mu.Unlock()

	name := fmt.Sprintf("run_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), rec.Seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
