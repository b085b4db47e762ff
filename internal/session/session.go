// Package session ties one inbound chat turn to a stored conversation.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/jsonx"
	"github.com/zeromicro/go-zero/core/logx"

	"stockchat-api/internal/gateway"
	"stockchat-api/internal/pipeline"
	"stockchat-api/internal/reply"
	"stockchat-api/internal/repo"
	"stockchat-api/internal/router"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// TitleMaxRunes bounds titles derived from the opening message.
	TitleMaxRunes = 50
)

var (
	ErrChatNotFound = repo.ErrChatNotFound
	ErrEmptyMessage = errors.New("message must not be empty")
	ErrEmptyTitle   = errors.New("title must not be empty")
)

// Runner executes the response pipeline for one query.
type Runner interface {
	Run(ctx context.Context, query string) pipeline.State
}

// TurnRequest is one inbound user message. A nil SessionID starts a new chat.
type TurnRequest struct {
	Message   string
	SessionID *int64
}

// TurnResult carries the replies produced for a turn.
type TurnResult struct {
	ChatID  int64
	Branch  router.Branch
	Replies []reply.Item
}

// Chat summarises a stored conversation.
type Chat struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoredMessage is a message read back from the store with its reply fields
// decoded. Fields that fail to decode are left empty.
type StoredMessage struct {
	ID             int64
	Role           string
	Content        string
	CreatedAt      time.Time
	Price          *float64
	ChangePercent  *float64
	MonthlyData    []gateway.HistoryBar
	ComparisonData []reply.ComparisonEntry
}

// Orchestrator runs turns and serves chat history.
type Orchestrator struct {
	chats  repo.ChatsRepo
	runner Runner
}

// New builds an Orchestrator.
func New(chats repo.ChatsRepo, runner Runner) (*Orchestrator, error) {
	if chats == nil || runner == nil {
		return nil, errors.New("session: chats repository and runner are required")
	}
	return &Orchestrator{chats: chats, runner: runner}, nil
}

// Turn resolves or creates the chat, stores the user message, runs the
// pipeline and stores one assistant message per reply.
func (o *Orchestrator) Turn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	chatID, err := o.resolveChat(ctx, req.SessionID, message)
	if err != nil {
		return nil, err
	}
	if _, err := o.chats.Append(ctx, chatID, repo.NewMessage{Role: RoleUser, Content: message}); err != nil {
		return nil, err
	}

	state := o.runner.Run(ctx, message)
	logx.WithContext(ctx).Infow("chat turn",
		logx.Field("chat_id", chatID),
		logx.Field("branch", state.Branch.String()),
		logx.Field("tickers", state.Tickers),
		logx.Field("replies", len(state.Replies)),
	)

	out := make([]repo.NewMessage, 0, len(state.Replies))
	for _, item := range state.Replies {
		msg, err := encodeReply(item)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	if _, err := o.chats.Append(ctx, chatID, out...); err != nil {
		return nil, err
	}

	return &TurnResult{ChatID: chatID, Branch: state.Branch, Replies: state.Replies}, nil
}

func (o *Orchestrator) resolveChat(ctx context.Context, sessionID *int64, message string) (int64, error) {
	if sessionID != nil {
		chat, err := o.chats.Get(ctx, *sessionID)
		if err != nil {
			return 0, err
		}
		return chat.ID, nil
	}
	chat, err := o.chats.Create(ctx, Title(message))
	if err != nil {
		return 0, err
	}
	return chat.ID, nil
}

// History returns a chat's messages oldest first.
func (o *Orchestrator) History(ctx context.Context, chatID int64) ([]StoredMessage, error) {
	if _, err := o.chats.Get(ctx, chatID); err != nil {
		return nil, err
	}
	records, err := o.chats.Messages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]StoredMessage, 0, len(records))
	for _, rec := range records {
		out = append(out, decodeMessage(ctx, rec))
	}
	return out, nil
}

// ListChats returns chats by most recent activity.
func (o *Orchestrator) ListChats(ctx context.Context) ([]Chat, error) {
	records, err := o.chats.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Chat, 0, len(records))
	for _, rec := range records {
		out = append(out, Chat{ID: rec.ID, Title: rec.Title, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt})
	}
	return out, nil
}

// DeleteChat removes a chat and its messages.
func (o *Orchestrator) DeleteChat(ctx context.Context, chatID int64) error {
	return o.chats.Delete(ctx, chatID)
}

// RenameChat replaces a chat's title.
func (o *Orchestrator) RenameChat(ctx context.Context, chatID int64, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	return o.chats.Rename(ctx, chatID, title)
}

// Title derives a chat title from the opening message.
func Title(message string) string {
	message = strings.TrimSpace(message)
	runes := []rune(message)
	if len(runes) <= TitleMaxRunes {
		return message
	}
	return string(runes[:TitleMaxRunes])
}

func encodeReply(item reply.Item) (repo.NewMessage, error) {
	msg := repo.NewMessage{
		Role:          RoleAssistant,
		Content:       item.Message,
		Price:         formatFloat(item.Price),
		ChangePercent: formatFloat(item.ChangePercent),
	}
	if item.MonthlyData != nil {
		s, err := jsonx.MarshalToString(item.MonthlyData)
		if err != nil {
			return msg, fmt.Errorf("encode monthly data: %w", err)
		}
		msg.MonthlyData = &s
	}
	if item.ComparisonData != nil {
		s, err := jsonx.MarshalToString(item.ComparisonData)
		if err != nil {
			return msg, fmt.Errorf("encode comparison data: %w", err)
		}
		msg.ComparisonData = &s
	}
	return msg, nil
}

func decodeMessage(ctx context.Context, rec repo.MessageRecord) StoredMessage {
	msg := StoredMessage{
		ID:        rec.ID,
		Role:      rec.Role,
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
	}
	logger := logx.WithContext(ctx)

	if v, err := parseFloat(rec.Price); err != nil {
		logger.Errorf("message %d: skip price: %v", rec.ID, err)
	} else {
		msg.Price = v
	}
	if v, err := parseFloat(rec.ChangePercent); err != nil {
		logger.Errorf("message %d: skip change percent: %v", rec.ID, err)
	} else {
		msg.ChangePercent = v
	}
	if rec.MonthlyData != nil {
		var bars []gateway.HistoryBar
		if err := jsonx.UnmarshalFromString(*rec.MonthlyData, &bars); err != nil {
			logger.Errorf("message %d: skip monthly data: %v", rec.ID, err)
		} else {
			msg.MonthlyData = bars
		}
	}
	if rec.ComparisonData != nil {
		var entries []reply.ComparisonEntry
		if err := jsonx.UnmarshalFromString(*rec.ComparisonData, &entries); err != nil {
			logger.Errorf("message %d: skip comparison data: %v", rec.ID, err)
		} else {
			msg.ComparisonData = entries
		}
	}
	return msg
}

func formatFloat(v *float64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	return &s
}

func parseFloat(s *string) (*float64, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
