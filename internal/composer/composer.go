// Package composer turns a normalised quote into a user-facing reply.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"stockchat-api/internal/gateway"
	"stockchat-api/internal/reply"
	"stockchat-api/pkg/llm"
	"stockchat-api/pkg/prompt"
)

// QuoteUnavailableMessage is used when no quote could be fetched.
const QuoteUnavailableMessage = "I couldn't fetch the stock data. Please check the ticker symbol and try again."

const disclaimer = "This is not financial advice."

// HistorySource supplies the chart window for a ticker.
type HistorySource interface {
	FetchMonthlyHistory(ctx context.Context, ticker string) ([]gateway.HistoryBar, error)
}

// Composer writes single-stock replies.
type Composer struct {
	llm     llm.Completer
	history HistorySource
	system  string
	reply   *prompt.Template
}

// New builds a Composer.
func New(completer llm.Completer, history HistorySource, prompts *prompt.Set) (*Composer, error) {
	if completer == nil || history == nil || prompts == nil {
		return nil, errors.New("composer: completer, history source and prompts are required")
	}
	system, err := prompts.StockSystem.Render(nil)
	if err != nil {
		return nil, fmt.Errorf("composer: %w", err)
	}
	return &Composer{llm: completer, history: history, system: system, reply: prompts.StockReply}, nil
}

// ComposeSingle builds the reply for one quote. It never fails: missing
// history yields an empty chart and a model failure yields a templated
// message.
func (c *Composer) ComposeSingle(ctx context.Context, q *gateway.Quote, query string) reply.Item {
	if q == nil {
		return reply.Text(QuoteUnavailableMessage)
	}

	reasoning := gateway.AnalyzeMovement(q)
	price := gateway.Round2(q.CurrentPrice)
	change := gateway.Round2(q.DailyChangePercent)

	monthly, err := c.history.FetchMonthlyHistory(ctx, q.Ticker)
	if err != nil {
		logx.WithContext(ctx).Infof("compose %s: chart history unavailable: %v", q.Ticker, err)
		monthly = []gateway.HistoryBar{}
	}

	msg, err := c.narrate(ctx, q, query, price, change, reasoning)
	if err != nil {
		logx.WithContext(ctx).Errorf("compose %s: narrative generation failed: %v", q.Ticker, err)
		msg = FallbackMessage(q, reasoning)
	}

	return reply.Item{
		Message:       msg,
		Price:         &price,
		ChangePercent: &change,
		MonthlyData:   monthly,
	}
}

func (c *Composer) narrate(ctx context.Context, q *gateway.Quote, query string, price, change float64, reasoning string) (string, error) {
	user, err := c.reply.Render(map[string]any{
		"Query":         query,
		"Company":       q.CompanyName,
		"Ticker":        q.Ticker,
		"Price":         price,
		"ChangePercent": change,
		"Reasoning":     reasoning,
	})
	if err != nil {
		return "", err
	}
	text, err := c.llm.Complete(ctx, c.system, user)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

// FallbackMessage is the deterministic reply used when the model is unavailable.
func FallbackMessage(q *gateway.Quote, reasoning string) string {
	name := q.CompanyName
	if name == "" {
		name = q.Ticker
	}
	return fmt.Sprintf("%s (%s) %s. %s", name, q.Ticker, FirstClause(reasoning), disclaimer)
}

// FirstClause returns reasoning up to its first comma or full stop, with the
// leading "The stock " subject dropped so it reads after a company name.
func FirstClause(reasoning string) string {
	clause := strings.TrimSpace(reasoning)
	if i := strings.IndexAny(clause, ",."); i >= 0 {
		clause = clause[:i]
	}
	clause = strings.TrimPrefix(clause, "The stock ")
	return strings.TrimSpace(clause)
}
