package repo_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockchat-api/internal/model"
	"stockchat-api/internal/repo"
)

// stepClock advances one millisecond per call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func newChatsRepo(t *testing.T) repo.ChatsRepo {
	t.Helper()
	conn, err := model.NewConn(model.DriverSQLite, filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	require.NoError(t, model.EnsureSchema(context.Background(), conn, model.DriverSQLite))

	clock := &stepClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)}
	set, err := repo.New(repo.Dependencies{DBConn: conn, Now: clock.Now})
	require.NoError(t, err)
	return set.Chats
}

func strPtr(s string) *string { return &s }

func TestChatsLifecycle(t *testing.T) {
	ctx := context.Background()
	chats := newChatsRepo(t)

	chat, err := chats.Create(ctx, "What about TSLA stock?")
	require.NoError(t, err)
	assert.NotZero(t, chat.ID)
	assert.Equal(t, chat.CreatedAt, chat.UpdatedAt)

	stored, err := chats.Append(ctx, chat.ID,
		repo.NewMessage{Role: "user", Content: "What about TSLA stock?"},
		repo.NewMessage{Role: "assistant", Content: "Tesla rose.", Price: strPtr("250.1"), MonthlyData: strPtr(`[]`)},
	)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	msgs, err := chats.Messages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Nil(t, msgs[0].Price)
	assert.Equal(t, "assistant", msgs[1].Role)
	require.NotNil(t, msgs[1].Price)
	assert.Equal(t, "250.1", *msgs[1].Price)
	assert.Nil(t, msgs[1].ComparisonData)

	got, err := chats.Get(ctx, chat.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(chat.UpdatedAt), "append must bump updated_at")
}

func TestChatsListOrderedByActivity(t *testing.T) {
	ctx := context.Background()
	chats := newChatsRepo(t)

	first, err := chats.Create(ctx, "first")
	require.NoError(t, err)
	second, err := chats.Create(ctx, "second")
	require.NoError(t, err)

	list, err := chats.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = chats.Append(ctx, first.ID, repo.NewMessage{Role: "user", Content: "again"})
	require.NoError(t, err)

	list, err = chats.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID, second.ID}, []int64{list[0].ID, list[1].ID})
}

func TestChatsDeleteCascades(t *testing.T) {
	ctx := context.Background()
	chats := newChatsRepo(t)

	chat, err := chats.Create(ctx, "to delete")
	require.NoError(t, err)
	_, err = chats.Append(ctx, chat.ID, repo.NewMessage{Role: "user", Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, chats.Delete(ctx, chat.ID))

	_, err = chats.Get(ctx, chat.ID)
	assert.ErrorIs(t, err, repo.ErrChatNotFound)
	msgs, err := chats.Messages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	assert.ErrorIs(t, chats.Delete(ctx, chat.ID), repo.ErrChatNotFound)
}

func TestChatsMissingChat(t *testing.T) {
	ctx := context.Background()
	chats := newChatsRepo(t)

	_, err := chats.Append(ctx, 999, repo.NewMessage{Role: "user", Content: "hi"})
	assert.ErrorIs(t, err, repo.ErrChatNotFound)
	assert.ErrorIs(t, chats.Rename(ctx, 999, "x"), repo.ErrChatNotFound)
}

func TestChatsRename(t *testing.T) {
	ctx := context.Background()
	chats := newChatsRepo(t)

	chat, err := chats.Create(ctx, "old")
	require.NoError(t, err)
	require.NoError(t, chats.Rename(ctx, chat.ID, "new title"))

	got, err := chats.Get(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
}

func TestNewRequiresConn(t *testing.T) {
	_, err := repo.New(repo.Dependencies{})
	require.Error(t, err)
}
