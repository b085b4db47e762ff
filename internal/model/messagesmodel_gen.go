package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/stores/builder"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/stringx"
)

var (
	messagesFieldNames        = builder.RawFieldNames(&Messages{}, true)
	messagesRows              = strings.Join(messagesFieldNames, ",")
	messagesRowsExpectAutoSet = strings.Join(stringx.Remove(messagesFieldNames, "id"), ",")
)

type (
	messagesModel interface {
		Insert(ctx context.Context, data *Messages) (int64, error)
		FindOne(ctx context.Context, id int64) (*Messages, error)
		Delete(ctx context.Context, id int64) error
	}

	defaultMessagesModel struct {
		conn  sqlx.SqlConn
		table string
	}

	Messages struct {
		Id             int64          `db:"id"`
		ChatId         int64          `db:"chat_id"`
		Role           string         `db:"role"`
		Content        string         `db:"content"`
		Price          sql.NullString `db:"price"`
		ChangePercent  sql.NullString `db:"change_percent"`
		MonthlyData    sql.NullString `db:"monthly_data"`
		ComparisonData sql.NullString `db:"comparison_data"`
		CreatedAt      int64          `db:"created_at"`
	}
)

func newMessagesModel(conn sqlx.SqlConn) *defaultMessagesModel {
	return &defaultMessagesModel{
		conn:  conn,
		table: `"messages"`,
	}
}

func (m *defaultMessagesModel) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("delete from %s where id = $1", m.table)
	_, err := m.conn.ExecCtx(ctx, query, id)
	return err
}

func (m *defaultMessagesModel) FindOne(ctx context.Context, id int64) (*Messages, error) {
	query := fmt.Sprintf("select %s from %s where id = $1 limit 1", messagesRows, m.table)
	var resp Messages
	err := m.conn.QueryRowCtx(ctx, &resp, query, id)
	switch {
	case err == nil:
		return &resp, nil
	case errors.Is(err, sqlx.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultMessagesModel) Insert(ctx context.Context, data *Messages) (int64, error) {
	query := fmt.Sprintf("insert into %s (%s) values ($1, $2, $3, $4, $5, $6, $7, $8) returning id", m.table, messagesRowsExpectAutoSet)
	var id int64
	err := m.conn.QueryRowCtx(ctx, &id, query, data.ChatId, data.Role, data.Content, data.Price,
		data.ChangePercent, data.MonthlyData, data.ComparisonData, data.CreatedAt)
	if err != nil {
		return 0, err
	}
	data.Id = id
	return id, nil
}
