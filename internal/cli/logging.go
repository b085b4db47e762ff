package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"stockchat-api/internal/config"
	"stockchat-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Listen: %s:%d", cfg.Host, cfg.Port),
		fmt.Sprintf("Database: %s (%s)", databaseDriver(cfg.Database.Driver), redactDSN(cfg.Database.DSN)),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		fmt.Sprintf("History window: %d days @ %s", cfg.Pipeline.HistoryDays, cfg.Pipeline.HistoryInterval),
		fmt.Sprintf("Chart window: %d days @ %s", cfg.Pipeline.ChartDays, cfg.Pipeline.ChartInterval),
		fmt.Sprintf("Comparison cap: %d tickers", cfg.Pipeline.MaxComparisonTickers),
		fmt.Sprintf("Call timeout: %s", cfg.Pipeline.CallTimeout),
		sectionLine("LLM config", cfg.LLM),
		sectionLine("Market config", cfg.Market),
	}
	if dir := strings.TrimSpace(cfg.Pipeline.JournalDir); dir != "" {
		lines = append(lines, fmt.Sprintf("Run journal: %s", dir))
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func databaseDriver(driver string) string {
	if strings.TrimSpace(driver) == "" {
		return "sqlite"
	}
	return driver
}

// redactDSN hides credentials in URL style DSNs.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return dsn
	}
	return scheme + "://***@" + rest[at+1:]
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
