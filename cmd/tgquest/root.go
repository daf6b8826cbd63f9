package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tgquest"
	"github.com/aretw0/tgquest/internal/config"
	"github.com/aretw0/tgquest/internal/logging"
	redislock "github.com/aretw0/tgquest/pkg/adapters/redis"
	"github.com/aretw0/tgquest/pkg/observability"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "tgquest",
	Short:         "tgquest runs branching text quests as Telegram bots",
	Long:          `tgquest loads a YAML quest document and serves it to Telegram users, over HTTP, to MCP agents or in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Settings file (YAML)")
	rootCmd.PersistentFlags().StringP("quests", "q", "", "Quest document, overrides quests_file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig resolves settings from the file, the environment and the flags.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if quests, _ := cmd.Flags().GetString("quests"); quests != "" {
		cfg.QuestsFile = quests
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return cfg, logging.New(cfg.Level()), nil
}

// stack is the engine plus what has to be released with it.
type stack struct {
	engine  *tgquest.Engine
	metrics *observability.Metrics
	closers []func() error
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// buildEngine wires the engine with metrics and, when redis_addr is set,
// the distributed session lock.
func buildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stack, error) {
	metrics := observability.NewMetrics()
	opts := []tgquest.Option{
		tgquest.WithLogger(logger),
		tgquest.WithLifecycleHooks(metrics.Hooks(logger)),
		tgquest.WithSilentMiss(cfg.SilentMiss),
	}

	s := &stack{metrics: metrics}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis %s: %w", cfg.RedisAddr, err)
		}
		s.closers = append(s.closers, client.Close)
		opts = append(opts, tgquest.WithLocker(redislock.NewLocker(client)))
		logger.Info("Distributed session lock enabled", "redis", cfg.RedisAddr)
	}

	engine, err := tgquest.New(cfg.QuestsFile, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.engine = engine
	s.closers = append(s.closers, engine.Close)
	metrics.RegisterSessions(engine.Sessions)

	logger.Info("Quest loaded", "file", cfg.QuestsFile, "screens", len(engine.Inspect()))
	return s, nil
}
