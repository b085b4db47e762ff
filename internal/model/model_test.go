package model

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

func newTestConn(t *testing.T) sqlx.SqlConn {
	t.Helper()
	conn, err := NewConn(DriverSQLite, filepath.Join(t.TempDir(), "model.db"))
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(context.Background(), conn, DriverSQLite))
	return conn
}

func TestInsertColumnsSkipAutoID(t *testing.T) {
	for name, cols := range map[string]string{
		"users":    usersRowsExpectAutoSet,
		"chats":    chatsRowsExpectAutoSet,
		"messages": messagesRowsExpectAutoSet,
	} {
		for _, col := range strings.Split(cols, ",") {
			assert.NotEqual(t, "id", strings.Trim(col, "`\""), name)
		}
	}
	assert.Equal(t, "username,created_at", usersRowsExpectAutoSet)
	assert.Equal(t, "user_id,title,created_at,updated_at", chatsRowsExpectAutoSet)
}

func TestUsersModelRoundTrip(t *testing.T) {
	ctx := context.Background()
	users := NewUsersModel(newTestConn(t))

	id, err := users.Insert(ctx, &Users{Username: "default_user", CreatedAt: 1700000000000})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := users.FindOne(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "default_user", got.Username)
	assert.Equal(t, int64(1700000000000), got.CreatedAt)

	byName, err := users.FindOneByUsername(ctx, "default_user")
	require.NoError(t, err)
	assert.Equal(t, id, byName.Id)

	got.Username = "renamed"
	require.NoError(t, users.Update(ctx, got))
	got, err = users.FindOne(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Username)

	_, err = users.FindOne(ctx, id+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChatsAndMessagesRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := newTestConn(t)
	users := NewUsersModel(conn)
	chats := NewChatsModel(conn)
	messages := NewMessagesModel(conn)

	userID, err := users.Insert(ctx, &Users{Username: "default_user", CreatedAt: 1})
	require.NoError(t, err)

	chatID, err := chats.Insert(ctx, &Chats{UserId: userID, Title: "How is TSLA doing?", CreatedAt: 10, UpdatedAt: 10})
	require.NoError(t, err)
	chat, err := chats.FindOne(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, userID, chat.UserId)
	assert.Equal(t, "How is TSLA doing?", chat.Title)

	msgID, err := messages.Insert(ctx, &Messages{
		ChatId:        chatID,
		Role:          "assistant",
		Content:       "TSLA is up.",
		Price:         sql.NullString{String: "250", Valid: true},
		ChangePercent: sql.NullString{String: "2.04", Valid: true},
		CreatedAt:     11,
	})
	require.NoError(t, err)
	msg, err := messages.FindOne(ctx, msgID)
	require.NoError(t, err)
	assert.Equal(t, "250", msg.Price.String)
	assert.False(t, msg.MonthlyData.Valid)

	list, err := messages.FindByChat(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	ok, err := chats.DeleteChat(ctx, chatID)
	require.NoError(t, err)
	assert.True(t, ok)
	list, err = messages.FindByChat(ctx, chatID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
