package svc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"go.opentelemetry.io/otel"

	"stockchat-api/internal/cache"
	"stockchat-api/internal/composer"
	"stockchat-api/internal/config"
	"stockchat-api/internal/gateway"
	"stockchat-api/internal/model"
	"stockchat-api/internal/pipeline"
	"stockchat-api/internal/repo"
	"stockchat-api/internal/router"
	"stockchat-api/internal/session"
	"stockchat-api/pkg/journal"
	llmpkg "stockchat-api/pkg/llm"
	marketpkg "stockchat-api/pkg/market"
	_ "stockchat-api/pkg/market/financego"
	_ "stockchat-api/pkg/market/yahoo"
	"stockchat-api/pkg/prompt"
)

// testModel is the low-cost model used when Env is test.
const testModel = "gemini-2.5-flash-lite"

type ServiceContext struct {
	Config config.Config

	DBConn sqlx.SqlConn
	Repos  *repo.Set

	LLMConfig *llmpkg.Config
	LLM       *llmpkg.Client

	MarketConfig    *marketpkg.Config
	MarketProviders map[string]marketpkg.Provider
	// Market is the default provider behind the read-through cache.
	Market  marketpkg.Provider
	Gateway *gateway.Gateway

	Prompts  *prompt.Set
	Pipeline *pipeline.Pipeline
	Sessions *session.Orchestrator
}

// MustNewServiceContext is NewServiceContext that exits on error.
func MustNewServiceContext(c config.Config) *ServiceContext {
	svc, err := NewServiceContext(c)
	if err != nil {
		logx.Must(err)
	}
	return svc
}

func NewServiceContext(c config.Config) (*ServiceContext, error) {
	svc := &ServiceContext{Config: c}

	llmCfg, err := c.LLMConfig()
	if err != nil {
		return nil, fmt.Errorf("load llm config: %w", err)
	}
	applyEnvDefaults(&c, llmCfg)
	client, err := llmpkg.NewClient(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}
	svc.LLMConfig = llmCfg
	svc.LLM = client

	marketCfg := c.MarketConfig()
	providers, err := marketCfg.BuildProviders()
	if err != nil {
		return nil, fmt.Errorf("build market providers: %w", err)
	}
	svc.MarketConfig = marketCfg
	svc.MarketProviders = providers

	store, err := newCacheStore(c)
	if err != nil {
		return nil, fmt.Errorf("build cache store: %w", err)
	}
	fetchTimeout := marketCfg.Providers[marketCfg.Default].Timeout
	base := marketpkg.WithTimeout(providers[marketCfg.Default], fetchTimeout)
	svc.Market = cache.NewMarketProvider(marketCfg.Default, base, store, cache.NewTTLSet(c.TTL),
		cache.WithFetchTimeout(fetchTimeout))
	svc.Gateway = gateway.New(svc.Market, gateway.Config{
		ShortDays:     c.Pipeline.HistoryDays,
		ShortInterval: c.Pipeline.HistoryInterval,
		ChartDays:     c.Pipeline.ChartDays,
		ChartInterval: c.Pipeline.ChartInterval,
	})

	conn, err := newDBConn(c.Database)
	if err != nil {
		return nil, err
	}
	repos, err := repo.New(repo.Dependencies{DBConn: conn})
	if err != nil {
		return nil, err
	}
	svc.DBConn = conn
	svc.Repos = repos

	prompts, err := prompt.Load(c.Pipeline.PromptDir)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	svc.Prompts = prompts

	completer := llmpkg.WithTimeout(client, c.Pipeline.CallTimeout)
	rt, err := router.New(completer, prompts)
	if err != nil {
		return nil, err
	}
	comp, err := composer.New(completer, svc.Gateway, prompts)
	if err != nil {
		return nil, err
	}
	svc.Pipeline, err = pipeline.New(pipeline.Deps{
		Extractor: rt,
		Market:    svc.Gateway,
		Composer:  comp,
		LLM:       completer,
		Prompts:   prompts,
		Tracer:    otel.Tracer("stockchat-api/pipeline"),
	}, pipeline.Options{
		MaxComparisonTickers: c.Pipeline.MaxComparisonTickers,
		ChartDays:            c.Pipeline.ChartDays,
	})
	if err != nil {
		return nil, err
	}

	var runner session.Runner = svc.Pipeline
	if dir := c.Pipeline.JournalDir; dir != "" {
		writer, err := journal.NewWriter(dir)
		if err != nil {
			return nil, err
		}
		runner = newJournalRunner(runner, writer)
	}
	svc.Sessions, err = session.New(repos.Chats, runner)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// Close releases the LLM client.
func (s *ServiceContext) Close() error {
	if s.LLM != nil {
		return s.LLM.Close()
	}
	return nil
}

// applyEnvDefaults switches to the low-cost model in the test environment.
func applyEnvDefaults(c *config.Config, llmCfg *llmpkg.Config) {
	if c.IsTestEnv() {
		llmCfg.DefaultModel = testModel
	}
}

func newCacheStore(c config.Config) (cache.Store, error) {
	if c.Redis.Host != "" {
		rds, err := redis.NewRedis(c.Redis)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisStore(rds), nil
	}
	return cache.NewMemoryStore("stockchat-market", time.Duration(c.TTL.Medium)*time.Second)
}

func newDBConn(c config.DatabaseConf) (sqlx.SqlConn, error) {
	driver, err := model.NormalizeDriver(c.Driver)
	if err != nil {
		return nil, err
	}
	if driver == model.DriverSQLite {
		if err := ensureSQLiteDir(c.DSN); err != nil {
			return nil, err
		}
	}
	conn, err := model.NewConn(driver, c.DSN)
	if err != nil {
		return nil, err
	}
	db, err := conn.RawDB()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if c.MaxOpen > 0 {
		db.SetMaxOpenConns(c.MaxOpen)
	}
	if c.MaxIdle > 0 {
		db.SetMaxIdleConns(c.MaxIdle)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := model.EnsureSchema(ctx, conn, driver); err != nil {
		return nil, err
	}
	return conn, nil
}

// ensureSQLiteDir creates the parent directory of a plain file DSN.
func ensureSQLiteDir(dsn string) error {
	if strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, "?") || dsn == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	return nil
}
