package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"stockchat-api/internal/model"
)

// DefaultUsername owns every chat; there is no multi-user model.
const DefaultUsername = "default_user"

// ErrChatNotFound is returned when a chat id does not exist.
var ErrChatNotFound = errors.New("chat not found")

// ChatRecord is a chat row with decoded timestamps.
type ChatRecord struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MessageRecord is a stored message. Optional reply fields keep their stored
// text form; decoding is left to the caller.
type MessageRecord struct {
	ID             int64
	ChatID         int64
	Role           string
	Content        string
	Price          *string
	ChangePercent  *string
	MonthlyData    *string
	ComparisonData *string
	CreatedAt      time.Time
}

// NewMessage is a message to append.
type NewMessage struct {
	Role           string
	Content        string
	Price          *string
	ChangePercent  *string
	MonthlyData    *string
	ComparisonData *string
}

// ChatsRepo persists chats and their append-only message log.
type ChatsRepo interface {
	// Create opens a chat owned by the default user.
	Create(ctx context.Context, title string) (*ChatRecord, error)
	Get(ctx context.Context, id int64) (*ChatRecord, error)
	// List returns chats by updated_at descending.
	List(ctx context.Context) ([]ChatRecord, error)
	// Append stores messages and bumps the chat's updated_at in one
	// transaction.
	Append(ctx context.Context, chatID int64, msgs ...NewMessage) ([]MessageRecord, error)
	// Messages returns a chat's messages by created_at ascending.
	Messages(ctx context.Context, chatID int64) ([]MessageRecord, error)
	Rename(ctx context.Context, id int64, title string) error
	// Delete removes the chat and its messages.
	Delete(ctx context.Context, id int64) error
}

type chatsRepo struct {
	conn     sqlx.SqlConn
	now      func() time.Time
	users    model.UsersModel
	chats    model.ChatsModel
	messages model.MessagesModel

	mu     sync.Mutex
	userID int64
}

func newChatsRepo(deps Dependencies) ChatsRepo {
	return &chatsRepo{
		conn:     deps.DBConn,
		now:      deps.Now,
		users:    model.NewUsersModel(deps.DBConn),
		chats:    model.NewChatsModel(deps.DBConn),
		messages: model.NewMessagesModel(deps.DBConn),
	}
}

// defaultUser returns the id of default_user, creating the row on first use.
func (r *chatsRepo) defaultUser(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userID != 0 {
		return r.userID, nil
	}

	user, err := r.users.FindOneByUsername(ctx, DefaultUsername)
	switch {
	case err == nil:
		r.userID = user.Id
		return r.userID, nil
	case !errors.Is(err, model.ErrNotFound):
		return 0, fmt.Errorf("find default user: %w", err)
	}

	id, err := r.users.Insert(ctx, &model.Users{Username: DefaultUsername, CreatedAt: r.now().UnixMilli()})
	if err != nil {
		return 0, fmt.Errorf("create default user: %w", err)
	}
	r.userID = id
	return id, nil
}

func (r *chatsRepo) Create(ctx context.Context, title string) (*ChatRecord, error) {
	userID, err := r.defaultUser(ctx)
	if err != nil {
		return nil, err
	}
	now := r.now().UnixMilli()
	row := &model.Chats{UserId: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	if _, err := r.chats.Insert(ctx, row); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	rec := toChatRecord(row)
	return &rec, nil
}

func (r *chatsRepo) Get(ctx context.Context, id int64) (*ChatRecord, error) {
	row, err := r.chats.FindOne(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("get chat %d: %w", id, err)
	}
	rec := toChatRecord(row)
	return &rec, nil
}

func (r *chatsRepo) List(ctx context.Context) ([]ChatRecord, error) {
	userID, err := r.defaultUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.chats.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	out := make([]ChatRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toChatRecord(row))
	}
	return out, nil
}

func (r *chatsRepo) Append(ctx context.Context, chatID int64, msgs ...NewMessage) ([]MessageRecord, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	now := r.now().UnixMilli()
	out := make([]MessageRecord, 0, len(msgs))

	err := r.conn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		conn := sqlx.NewSqlConnFromSession(session)
		chats := model.NewChatsModel(conn)
		messages := model.NewMessagesModel(conn)

		ok, err := chats.Touch(ctx, chatID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrChatNotFound
		}
		for _, msg := range msgs {
			row := &model.Messages{
				ChatId:         chatID,
				Role:           msg.Role,
				Content:        msg.Content,
				Price:          nullString(msg.Price),
				ChangePercent:  nullString(msg.ChangePercent),
				MonthlyData:    nullString(msg.MonthlyData),
				ComparisonData: nullString(msg.ComparisonData),
				CreatedAt:      now,
			}
			if _, err := messages.Insert(ctx, row); err != nil {
				return err
			}
			out = append(out, toMessageRecord(row))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrChatNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("append to chat %d: %w", chatID, err)
	}
	return out, nil
}

func (r *chatsRepo) Messages(ctx context.Context, chatID int64) ([]MessageRecord, error) {
	rows, err := r.messages.FindByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("messages of chat %d: %w", chatID, err)
	}
	out := make([]MessageRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMessageRecord(row))
	}
	return out, nil
}

func (r *chatsRepo) Rename(ctx context.Context, id int64, title string) error {
	ok, err := r.chats.UpdateTitle(ctx, id, title, r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("rename chat %d: %w", id, err)
	}
	if !ok {
		return ErrChatNotFound
	}
	return nil
}

// Delete removes messages explicitly as well so that the cascade does not
// depend on the driver enforcing foreign keys.
func (r *chatsRepo) Delete(ctx context.Context, id int64) error {
	err := r.conn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		conn := sqlx.NewSqlConnFromSession(session)
		if err := model.NewMessagesModel(conn).DeleteByChat(ctx, id); err != nil {
			return err
		}
		ok, err := model.NewChatsModel(conn).DeleteChat(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrChatNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrChatNotFound) {
		return fmt.Errorf("delete chat %d: %w", id, err)
	}
	return err
}

func toChatRecord(row *model.Chats) ChatRecord {
	return ChatRecord{
		ID:        row.Id,
		Title:     row.Title,
		CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(row.UpdatedAt).UTC(),
	}
}

func toMessageRecord(row *model.Messages) MessageRecord {
	return MessageRecord{
		ID:             row.Id,
		ChatID:         row.ChatId,
		Role:           row.Role,
		Content:        row.Content,
		Price:          stringPtr(row.Price),
		ChangePercent:  stringPtr(row.ChangePercent),
		MonthlyData:    stringPtr(row.MonthlyData),
		ComparisonData: stringPtr(row.ComparisonData),
		CreatedAt:      time.UnixMilli(row.CreatedAt).UTC(),
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
