package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/tgquest/pkg/adapters/telegram"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot with long polling",
	Long:  `Connects to Telegram and serves the quest through getUpdates. Metrics are exposed on the listen address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.RequireToken(); err != nil {
			return err
		}
		proxy, err := cfg.ProxyURL()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := buildEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		bot, err := telegram.NewBot(cfg.BotToken, proxy)
		if err != nil {
			return err
		}
		logger.Info("Authorized", "bot", bot.Self.UserName)

		// A webhook left over from serve would make getUpdates fail.
		if err := telegram.DeleteWebhook(bot); err != nil {
			logger.Warn("Could not delete webhook", "err", err)
		}

		handler := telegram.NewHandler(st.engine,
			telegram.NewDispatcher(bot, telegram.WithDispatchLogger(logger)),
			telegram.WithLogger(logger),
			telegram.WithObserver(st.metrics.ObserveUpdate),
			telegram.WithWorkers(cfg.Workers),
		)
		poller := telegram.NewPoller(bot, handler, telegram.WithPollLogger(logger))

		metricsSrv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           st.metrics.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Polling for updates")
			return poller.Run(gctx)
		})
		g.Go(func() error {
			logger.Info("Metrics listening", "address", cfg.Listen)
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return shutdown(metricsSrv)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		return err
	}
	return nil
}
