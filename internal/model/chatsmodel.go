package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ ChatsModel = (*customChatsModel)(nil)

type (
	// ChatsModel is an interface to be customized, add more methods here,
	// and implement the added methods in customChatsModel.
	ChatsModel interface {
		chatsModel
		// FindByUser lists a user's chats, most recently active first.
		FindByUser(ctx context.Context, userID int64) ([]*Chats, error)
		// Touch bumps updated_at and reports whether the chat exists.
		Touch(ctx context.Context, id, updatedAt int64) (bool, error)
		// UpdateTitle renames a chat and reports whether it exists.
		UpdateTitle(ctx context.Context, id int64, title string, updatedAt int64) (bool, error)
		// DeleteChat removes a chat and reports whether it existed.
		DeleteChat(ctx context.Context, id int64) (bool, error)
	}

	customChatsModel struct {
		*defaultChatsModel
	}
)

// NewChatsModel returns a model for the database table.
func NewChatsModel(conn sqlx.SqlConn) ChatsModel {
	return &customChatsModel{
		defaultChatsModel: newChatsModel(conn),
	}
}

func (m *customChatsModel) FindByUser(ctx context.Context, userID int64) ([]*Chats, error) {
	query := fmt.Sprintf("select %s from %s where user_id = $1 order by updated_at desc, id desc", chatsRows, m.table)
	var resp []*Chats
	if err := m.conn.QueryRowsCtx(ctx, &resp, query, userID); err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *customChatsModel) Touch(ctx context.Context, id, updatedAt int64) (bool, error) {
	query := fmt.Sprintf("update %s set updated_at = $2 where id = $1", m.table)
	return affected(m.conn.ExecCtx(ctx, query, id, updatedAt))
}

func (m *customChatsModel) UpdateTitle(ctx context.Context, id int64, title string, updatedAt int64) (bool, error) {
	query := fmt.Sprintf("update %s set title = $2, updated_at = $3 where id = $1", m.table)
	return affected(m.conn.ExecCtx(ctx, query, id, title, updatedAt))
}

func (m *customChatsModel) DeleteChat(ctx context.Context, id int64) (bool, error) {
	query := fmt.Sprintf("delete from %s where id = $1", m.table)
	return affected(m.conn.ExecCtx(ctx, query, id))
}
