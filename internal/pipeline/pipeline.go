// Package pipeline runs a query through extraction, classification and the
// selected response branch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"stockchat-api/internal/gateway"
	"stockchat-api/internal/reply"
	"stockchat-api/internal/router"
	"stockchat-api/pkg/llm"
	"stockchat-api/pkg/prompt"
)

// DefaultMaxComparisonTickers caps how many tickers a comparison considers.
const DefaultMaxComparisonTickers = 10

// TickerExtractor finds ticker symbols in free text.
type TickerExtractor interface {
	ExtractTickers(ctx context.Context, query string) ([]string, error)
}

// MarketData is the subset of the gateway the branches need.
type MarketData interface {
	FetchQuote(ctx context.Context, ticker string) (*gateway.Quote, error)
	FetchMonthlyHistory(ctx context.Context, ticker string) ([]gateway.HistoryBar, error)
}

// SingleComposer writes the reply for one quote.
type SingleComposer interface {
	ComposeSingle(ctx context.Context, q *gateway.Quote, query string) reply.Item
}

// Deps are the collaborators a Pipeline is built from. Tracer may be nil.
type Deps struct {
	Extractor TickerExtractor
	Market    MarketData
	Composer  SingleComposer
	LLM       llm.Completer
	Prompts   *prompt.Set
	Tracer    trace.Tracer
}

// Options tune branch behaviour.
type Options struct {
	MaxComparisonTickers int
	ChartDays            int
}

// Pipeline executes one query end to end.
type Pipeline struct {
	extractor TickerExtractor
	market    MarketData
	composer  SingleComposer
	llm       llm.Completer
	persona   string
	tracer    trace.Tracer
	opts      Options
}

// New validates deps and builds a Pipeline.
func New(deps Deps, opts Options) (*Pipeline, error) {
	if deps.Extractor == nil || deps.Market == nil || deps.Composer == nil || deps.LLM == nil || deps.Prompts == nil {
		return nil, errors.New("pipeline: extractor, market, composer, llm and prompts are required")
	}
	persona, err := deps.Prompts.GeneralFinance.Render(nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("stockchat/pipeline")
	}
	if opts.MaxComparisonTickers <= 0 {
		opts.MaxComparisonTickers = DefaultMaxComparisonTickers
	}
	if opts.ChartDays <= 0 {
		opts.ChartDays = 30
	}
	return &Pipeline{
		extractor: deps.Extractor,
		market:    deps.Market,
		composer:  deps.Composer,
		llm:       deps.LLM,
		persona:   persona,
		tracer:    tracer,
		opts:      opts,
	}, nil
}

// Run executes extract, classify and execute in order and returns the final
// state. Replies always holds at least one item.
func (p *Pipeline) Run(ctx context.Context, query string) State {
	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	s := NewState(query)
	s = p.extract(ctx, s)
	s = classify(s)
	span.SetAttributes(
		attribute.String("pipeline.branch", s.Branch.String()),
		attribute.StringSlice("pipeline.tickers", s.Tickers),
	)
	s = p.execute(ctx, s)
	span.SetAttributes(attribute.Int("pipeline.replies", len(s.Replies)))
	return s
}

// extract degrades to no tickers when the model call fails so that
// classification can still route greetings and finance questions.
func (p *Pipeline) extract(ctx context.Context, s State) State {
	ctx, span := p.tracer.Start(ctx, "pipeline.extract")
	defer span.End()

	tickers, err := p.extractor.ExtractTickers(ctx, s.Query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ticker extraction failed")
		logx.WithContext(ctx).Errorf("ticker extraction failed, continuing without tickers: %v", err)
		return s.WithTickers(nil)
	}
	return s.WithTickers(tickers)
}

func classify(s State) State {
	return s.WithBranch(router.Classify(s.Query, s.Tickers))
}

func (p *Pipeline) execute(ctx context.Context, s State) State {
	ctx, span := p.tracer.Start(ctx, "pipeline.execute",
		trace.WithAttributes(attribute.String("pipeline.branch", s.Branch.String())))
	defer span.End()

	var items []reply.Item
	switch s.Branch {
	case router.TickersFound:
		items = p.tickersFound(ctx, s)
	case router.StockComparison:
		items = p.comparison(ctx, s)
	case router.GeneralFinance:
		items = p.generalFinance(ctx, s)
	default:
		items = []reply.Item{reply.Text(noTickerMessage)}
	}
	return s.WithReplies(items)
}

func (p *Pipeline) tickersFound(ctx context.Context, s State) []reply.Item {
	items := make([]reply.Item, 0, len(s.Tickers))
	for _, ticker := range s.Tickers {
		q, err := p.market.FetchQuote(ctx, ticker)
		if err != nil {
			items = append(items, reply.Text(fetchFailedMessage(ticker)))
			continue
		}
		items = append(items, p.composer.ComposeSingle(ctx, q, s.Query))
	}
	return items
}

func (p *Pipeline) comparison(ctx context.Context, s State) []reply.Item {
	candidates := s.Tickers
	if len(candidates) > p.opts.MaxComparisonTickers {
		candidates = candidates[:p.opts.MaxComparisonTickers]
	}

	var (
		entries   []reply.ComparisonEntry
		qualified []string
	)
	for _, ticker := range candidates {
		q, err := p.market.FetchQuote(ctx, ticker)
		if err != nil {
			continue
		}
		bars, err := p.market.FetchMonthlyHistory(ctx, ticker)
		if err != nil || len(bars) == 0 {
			continue
		}
		entries = append(entries, reply.ComparisonEntry{
			Ticker:             q.Ticker,
			CurrentPrice:       gateway.Round2(q.CurrentPrice),
			DailyChangePercent: gateway.Round2(q.DailyChangePercent),
			Data:               bars,
		})
		qualified = append(qualified, q.Ticker)
	}

	if len(entries) < 2 {
		return []reply.Item{reply.Text(notEnoughComparisonMessage)}
	}
	return []reply.Item{{
		Message:        comparisonMessage(qualified, p.opts.ChartDays),
		ComparisonData: entries,
	}}
}

func (p *Pipeline) generalFinance(ctx context.Context, s State) []reply.Item {
	text, err := p.llm.Complete(ctx, p.persona, s.Query)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		if err != nil {
			logx.WithContext(ctx).Errorf("general finance answer failed: %v", err)
		}
		text = generalFinanceFallback(s.Query)
	}
	return []reply.Item{reply.Text(text)}
}
