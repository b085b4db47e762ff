package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockchat-api/pkg/prompt"
)

type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}

func TestParseTickers(t *testing.T) {
	tests := []struct {
		resp string
		want []string
	}{
		{resp: "AAPL", want: []string{"AAPL"}},
		{resp: " aapl , msft ", want: []string{"AAPL", "MSFT"}},
		{resp: "AAPL,,MSFT,", want: []string{"AAPL", "MSFT"}},
		{resp: "TSLA, AAPL, TSLA", want: []string{"TSLA", "AAPL"}},
		{resp: "NONE", want: nil},
		{resp: " none \n", want: nil},
		{resp: "", want: nil},
		{resp: " , ", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.resp, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTickers(tt.resp))
		})
	}
}

func TestExtractTickers(t *testing.T) {
	fake := &fakeCompleter{reply: "GOOGL, MSFT"}
	r, err := New(fake, prompt.MustLoadDefault())
	require.NoError(t, err)

	got, err := r.ExtractTickers(context.Background(), "Compare Google and Microsoft")
	require.NoError(t, err)
	assert.Equal(t, []string{"GOOGL", "MSFT"}, got)
	assert.Contains(t, fake.system, "NONE")
	assert.Equal(t, `User Query: "Compare Google and Microsoft"`, fake.user)
}

func TestExtractTickersError(t *testing.T) {
	boom := errors.New("quota exceeded")
	r, err := New(&fakeCompleter{err: boom}, prompt.MustLoadDefault())
	require.NoError(t, err)

	got, err := r.ExtractTickers(context.Background(), "AAPL?")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, prompt.MustLoadDefault())
	assert.Error(t, err)
	_, err = New(&fakeCompleter{}, nil)
	assert.Error(t, err)
}
