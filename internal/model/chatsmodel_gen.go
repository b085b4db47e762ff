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
	chatsFieldNames          = builder.RawFieldNames(&Chats{}, true)
	chatsRows                = strings.Join(chatsFieldNames, ",")
	chatsRowsExpectAutoSet   = strings.Join(stringx.Remove(chatsFieldNames, "id"), ",")
	chatsRowsWithPlaceHolder = builder.PostgreSqlJoin(stringx.Remove(chatsFieldNames, "id"))
)

type (
	chatsModel interface {
		Insert(ctx context.Context, data *Chats) (int64, error)
		FindOne(ctx context.Context, id int64) (*Chats, error)
		Update(ctx context.Context, data *Chats) error
		Delete(ctx context.Context, id int64) error
	}

	defaultChatsModel struct {
		conn  sqlx.SqlConn
		table string
	}

	Chats struct {
		Id        int64  `db:"id"`
		UserId    int64  `db:"user_id"`
		Title     string `db:"title"`
		CreatedAt int64  `db:"created_at"`
		UpdatedAt int64  `db:"updated_at"`
	}
)

func newChatsModel(conn sqlx.SqlConn) *defaultChatsModel {
	return &defaultChatsModel{
		conn:  conn,
		table: `"chats"`,
	}
}

func (m *defaultChatsModel) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("delete from %s where id = $1", m.table)
	_, err := m.conn.ExecCtx(ctx, query, id)
	return err
}

func (m *defaultChatsModel) FindOne(ctx context.Context, id int64) (*Chats, error) {
	query := fmt.Sprintf("select %s from %s where id = $1 limit 1", chatsRows, m.table)
	var resp Chats
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

func (m *defaultChatsModel) Insert(ctx context.Context, data *Chats) (int64, error) {
	query := fmt.Sprintf("insert into %s (%s) values ($1, $2, $3, $4) returning id", m.table, chatsRowsExpectAutoSet)
	var id int64
	if err := m.conn.QueryRowCtx(ctx, &id, query, data.UserId, data.Title, data.CreatedAt, data.UpdatedAt); err != nil {
		return 0, err
	}
	data.Id = id
	return id, nil
}

func (m *defaultChatsModel) Update(ctx context.Context, data *Chats) error {
	query := fmt.Sprintf("update %s set %s where id = $1", m.table, chatsRowsWithPlaceHolder)
	_, err := m.conn.ExecCtx(ctx, query, data.Id, data.UserId, data.Title, data.CreatedAt, data.UpdatedAt)
	return err
}
