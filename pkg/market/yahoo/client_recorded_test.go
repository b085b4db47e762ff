package yahoo

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Replays a recorded chart call; skipped when the cassette is absent unless
// RECORD_CASSETTES=1.
func TestClient_Quote_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "yahoo_chart_aapl")
	if _, err := os.Stat(cassette + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassette)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(cassette), 0o755))
	}

	r, err := recorder.New(cassette)
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	client := NewClient(WithHTTPClient(&http.Client{Transport: r}))
	q, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	price, ok := q.CurrentPrice()
	assert.True(t, ok)
	assert.Greater(t, price, 0.0)
}
