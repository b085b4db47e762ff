package llm

import (
	"context"
	"sort"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

// Fields represents structured logging fields.
type Fields map[string]any

// Logger wraps logging behaviour used by the client.
type Logger interface {
	Debug(ctx context.Context, msg string, fields Fields)
	Info(ctx context.Context, msg string, fields Fields)
	Warn(ctx context.Context, msg string, fields Fields)
	Error(ctx context.Context, err error, fields Fields)
}

type logxLogger struct{}

// NewLogger returns a Logger backed by go-zero's logx.
func NewLogger(level string) Logger {
	logx.SetLevel(parseLevel(level))
	return &logxLogger{}
}

func (l *logxLogger) Debug(ctx context.Context, msg string, fields Fields) {
	logx.WithContext(ctx).Debugw(msg, toLogFields(fields)...)
}

func (l *logxLogger) Info(ctx context.Context, msg string, fields Fields) {
	logx.WithContext(ctx).Infow(msg, toLogFields(fields)...)
}

// Warn maps onto logx's slow channel, which is the closest level logx offers.
func (l *logxLogger) Warn(ctx context.Context, msg string, fields Fields) {
	logx.WithContext(ctx).Sloww(msg, toLogFields(fields)...)
}

func (l *logxLogger) Error(ctx context.Context, err error, fields Fields) {
	msg := "llm error"
	if err != nil {
		msg = err.Error()
	}
	logx.WithContext(ctx).Errorw(msg, toLogFields(fields)...)
}

type nopLogger struct{}

// NopLogger discards everything; handy in tests.
func NopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, Fields) {}
func (nopLogger) Info(context.Context, string, Fields)  {}
func (nopLogger) Warn(context.Context, string, Fields)  {}
func (nopLogger) Error(context.Context, error, Fields)  {}

func parseLevel(level string) uint32 {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logx.DebugLevel
	case "error":
		return logx.ErrorLevel
	case "severe", "fatal":
		return logx.SevereLevel
	default:
		return logx.InfoLevel
	}
}

// toLogFields converts fields to logx fields in key order.
func toLogFields(fields Fields) []logx.LogField {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]logx.LogField, 0, len(keys))
	for _, k := range keys {
		out = append(out, logx.Field(k, fields[k]))
	}
	return out
}
