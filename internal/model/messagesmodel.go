package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ MessagesModel = (*customMessagesModel)(nil)

type (
	// MessagesModel is an interface to be customized, add more methods here,
	// and implement the added methods in customMessagesModel.
	MessagesModel interface {
		messagesModel
		// FindByChat returns a chat's messages oldest first; ties keep insert order.
		FindByChat(ctx context.Context, chatID int64) ([]*Messages, error)
		DeleteByChat(ctx context.Context, chatID int64) error
	}

	customMessagesModel struct {
		*defaultMessagesModel
	}
)

// NewMessagesModel returns a model for the database table.
func NewMessagesModel(conn sqlx.SqlConn) MessagesModel {
	return &customMessagesModel{
		defaultMessagesModel: newMessagesModel(conn),
	}
}

func (m *customMessagesModel) FindByChat(ctx context.Context, chatID int64) ([]*Messages, error) {
	query := fmt.Sprintf("select %s from %s where chat_id = $1 order by created_at asc, id asc", messagesRows, m.table)
	var resp []*Messages
	if err := m.conn.QueryRowsCtx(ctx, &resp, query, chatID); err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *customMessagesModel) DeleteByChat(ctx context.Context, chatID int64) error {
	query := fmt.Sprintf("delete from %s where chat_id = $1", m.table)
	_, err := m.conn.ExecCtx(ctx, query, chatID)
	return err
}
