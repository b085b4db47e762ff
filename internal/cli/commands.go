package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"

	"stockchat-api/internal/config"
	"stockchat-api/internal/gateway"
	"stockchat-api/internal/handler"
	"stockchat-api/internal/session"
	"stockchat-api/internal/svc"
)

const defaultConfigFile = "etc/stockchat.yaml"

// NewRootCmd builds the stockchat command tree.
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "stockchat",
		Short: "Stock chat assistant",
		Long: `stockchat answers free-text questions about stocks. It extracts tickers
with an LLM, fetches quotes and history, and keeps the conversation per chat.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "f", defaultConfigFile, "the config file")

	load := func() (*config.Config, error) {
		return config.Load(configFile)
	}

	rootCmd.AddCommand(newServeCmd(load))
	rootCmd.AddCommand(newAskCmd(load))
	rootCmd.AddCommand(newChatsCmd(load))
	rootCmd.AddCommand(newHistoryCmd(load))
	rootCmd.AddCommand(newQuoteCmd(load))
	rootCmd.AddCommand(newWarmCmd(load))
	rootCmd.AddCommand(newConfigCmd(load))

	return rootCmd
}

type loader func() (*config.Config, error)

// bootstrap loads config, sets up logging and wires the service context.
func bootstrap(load loader, quiet bool) (*config.Config, *svc.ServiceContext, error) {
	cfg, err := load()
	if err != nil {
		return nil, nil, err
	}
	logConf := cfg.Log
	if quiet && logConf.Mode == "console" {
		logConf.Level = "error"
	}
	logx.MustSetup(logConf)
	logx.DisableStat()

	svcCtx, err := svc.NewServiceContext(*cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svcCtx, nil
}

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svcCtx, err := bootstrap(load, false)
			if err != nil {
				return err
			}
			defer svcCtx.Close()
			LogConfigSummary(cfg)

			server := rest.MustNewServer(cfg.RestConf, rest.WithCors())
			defer server.Stop()
			handler.RegisterHandlers(server, svcCtx)

			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at %s:%d...\n", cfg.Host, cfg.Port)
			server.Start()
			return nil
		},
	}
}

func newAskCmd(load loader) *cobra.Command {
	var sessionID int64
	cmd := &cobra.Command{
		Use:   "ask QUERY",
		Short: "Run one chat turn and print the reply as JSON",
		Example: `  stockchat ask "What about TSLA stock?"
  stockchat ask --session 3 "Compare MSFT and GOOGL"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svcCtx, err := bootstrap(load, true)
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			req := session.TurnRequest{Message: strings.Join(args, " ")}
			if sessionID > 0 {
				req.SessionID = &sessionID
			}
			res, err := svcCtx.Sessions.Turn(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"session_id": res.ChatID,
				"branch":     res.Branch.String(),
				"response":   res.Replies,
			})
		},
	}
	cmd.Flags().Int64Var(&sessionID, "session", 0, "continue an existing chat")
	return cmd
}

func newChatsCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List stored chats, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svcCtx, err := bootstrap(load, true)
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			chats, err := svcCtx.Sessions.ListChats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range chats {
				fmt.Fprintf(out, "%6d  %s  %s\n", c.ID, c.UpdatedAt.Local().Format(time.DateTime), c.Title)
			}
			return nil
		},
	}
}

func newHistoryCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "history CHAT_ID",
		Short: "Print the messages of a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q", args[0])
			}
			_, svcCtx, err := bootstrap(load, true)
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			msgs, err := svcCtx.Sessions.History(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range msgs {
				fmt.Fprintf(out, "[%s] %s: %s\n", m.CreatedAt.Local().Format(time.DateTime), m.Role, m.Content)
			}
			return nil
		},
	}
}

func newQuoteCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Fetch a quote and print the movement analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svcCtx, err := bootstrap(load, true)
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			q, err := svcCtx.Gateway.FetchQuote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), q); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), gateway.AnalyzeMovement(q))
			return nil
		},
	}
}

func newWarmCmd(load loader) *cobra.Command {
	var (
		symbolsRaw string
		interval   time.Duration
		timeout    time.Duration
		once       bool
	)
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Keep the market cache warm for a watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := ParseSymbols(symbolsRaw)
			if len(symbols) == 0 {
				return fmt.Errorf("no symbols provided; use --symbols")
			}
			_, svcCtx, err := bootstrap(func() (*config.Config, error) {
				cfg, err := load()
				if err != nil {
					return nil, err
				}
				return cfg, RequireSharedCache(cfg)
			}, false)
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			if once {
				if failed := WarmOnce(cmd.Context(), svcCtx.Gateway, symbols, timeout); len(failed) > 0 {
					return fmt.Errorf("warm failed for %s", strings.Join(failed, ","))
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			RunWarmer(ctx, svcCtx.Gateway, symbols, interval, timeout)
			return nil
		},
	}
	cmd.Flags().StringVar(&symbolsRaw, "symbols", "AAPL,MSFT,GOOGL,AMZN,NVDA,META,TSLA", "comma-separated watchlist")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Minute, "refresh interval")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout per symbol")
	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")
	return cmd
}

func newConfigCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the loaded configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			for _, line := range ConfigSummaryLines(cfg) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the root command with a background context.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
