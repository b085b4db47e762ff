package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const completionBody = `{
	"id":"chatcmpl-1",
	"object":"chat.completion",
	"created":1730366400,
	"model":"gemini-2.5-flash",
	"choices":[{
		"index":0,
		"finish_reason":"stop",
		"logprobs":null,
		"message":{"role":"assistant","content":"  AAPL looks steady.  "}
	}],
	"usage":{"prompt_tokens":10,"completion_tokens":12,"total_tokens":22}
}`

type recordingServer struct {
	mu     sync.Mutex
	calls  int
	bodies []map[string]any
	paths  []string
}

func (s *recordingServer) handler(fail int, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls++
		call := s.calls
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		s.bodies = append(s.bodies, body)
		s.paths = append(s.paths, r.URL.Path)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if call <= fail {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"try later","type":"rate_limit"}}`))
			return
		}
		_, _ = w.Write([]byte(completionBody))
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = srv.URL
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gemini-2.5-flash"
	}
	cfg.Timeout = 5 * time.Second
	client, err := NewClient(&cfg,
		WithHTTPClient(srv.Client()),
		WithLogger(NopLogger()),
		WithRetryHandler(NewRetryHandler(RetryConfig{MaxRetries: cfg.MaxRetries, InitialBackoff: time.Millisecond})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientComplete(t *testing.T) {
	rec := &recordingServer{}
	srv := httptest.NewServer(rec.handler(0, 0))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	text, err := client.Complete(context.Background(), "You are an analyst.", "Tell me about AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL looks steady.", text)

	require.Equal(t, 1, rec.calls)
	require.Equal(t, "/chat/completions", rec.paths[0])
	body := rec.bodies[0]
	require.Equal(t, "gemini-2.5-flash", body["model"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	require.Equal(t, "system", msgs[0].(map[string]any)["role"])
	require.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestClientCompleteWithoutSystemPrompt(t *testing.T) {
	rec := &recordingServer{}
	srv := httptest.NewServer(rec.handler(0, 0))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	_, err := client.Complete(context.Background(), "", "hello")
	require.NoError(t, err)
	msgs := rec.bodies[0]["messages"].([]any)
	require.Len(t, msgs, 1)
}

func TestClientChatAppliesModelDefaults(t *testing.T) {
	rec := &recordingServer{}
	srv := httptest.NewServer(rec.handler(0, 0))
	defer srv.Close()

	temp := 0.2
	maxTokens := 256
	client := newTestClient(t, srv, Config{
		DefaultModel: "fast",
		Models: map[string]ModelConfig{
			"fast": {Provider: "gemini", ModelName: "gemini-2.5-flash-lite", Temperature: &temp, MaxCompletionTokens: &maxTokens},
		},
	})

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, "chatcmpl-1", resp.ID)
	require.Equal(t, 22, resp.Usage.TotalTokens)
	require.Equal(t, "stop", resp.Choices[0].FinishReason)

	body := rec.bodies[0]
	require.Equal(t, "gemini-2.5-flash-lite", body["model"])
	require.InDelta(t, 0.2, body["temperature"], 1e-9)
	require.EqualValues(t, 256, body["max_completion_tokens"])
}

func TestClientChatRetriesRateLimit(t *testing.T) {
	rec := &recordingServer{}
	srv := httptest.NewServer(rec.handler(1, http.StatusTooManyRequests))
	defer srv.Close()

	client := newTestClient(t, srv, Config{MaxRetries: 2})
	text, err := client.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	require.Equal(t, "AAPL looks steady.", text)
	require.Equal(t, 2, rec.calls)
}

func TestClientChatGivesUpOnBadRequest(t *testing.T) {
	rec := &recordingServer{}
	srv := httptest.NewServer(rec.handler(10, http.StatusBadRequest))
	defer srv.Close()

	client := newTestClient(t, srv, Config{MaxRetries: 3})
	_, err := client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	require.Equal(t, 1, rec.calls)
}

func TestClientChatValidation(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	client := newTestClient(t, srv, Config{})

	_, err := client.Chat(context.Background(), nil)
	require.Error(t, err)
	_, err = client.Chat(context.Background(), &ChatRequest{})
	require.ErrorContains(t, err, "at least one message")

	_, err = NewClient(nil)
	require.Error(t, err)
	_, err = NewClient(&Config{})
	require.Error(t, err)
}

func TestSummarizeMessages(t *testing.T) {
	require.Empty(t, summarizeMessages(nil))
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	got := summarizeMessages([]Message{{Content: "first"}, {Content: string(long)}})
	require.Len(t, got, 163)
}

func TestWithTimeout(t *testing.T) {
	slow := CompleterFunc(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	_, err := WithTimeout(slow, 5*time.Millisecond).Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	same := CompleterFunc(func(context.Context, string, string) (string, error) { return "ok", nil })
	out, err := WithTimeout(same, 0).Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	require.Equal(t, "ok", out)
}
