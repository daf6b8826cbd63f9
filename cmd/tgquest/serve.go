package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/aretw0/tgquest/pkg/adapters/http"
	"github.com/aretw0/tgquest/pkg/adapters/telegram"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the JSON API, the per-user event stream and /metrics.
When webhook_url and bot_token are set, the Telegram webhook is registered and
mounted on a path derived from the token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
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

		opts := []httpadapter.Option{
			httpadapter.WithLogger(logger),
			httpadapter.WithMetrics(st.metrics.Handler()),
			httpadapter.WithSessionCount(st.engine.Sessions),
		}

		if cfg.WebhookURL != "" {
			if err := cfg.RequireToken(); err != nil {
				return err
			}
			proxy, err := cfg.ProxyURL()
			if err != nil {
				return err
			}
			bot, err := telegram.NewBot(cfg.BotToken, proxy)
			if err != nil {
				return err
			}
			handler := telegram.NewHandler(st.engine,
				telegram.NewDispatcher(bot, telegram.WithDispatchLogger(logger)),
				telegram.WithLogger(logger),
				telegram.WithObserver(st.metrics.ObserveUpdate),
			)
			path := telegram.WebhookPath(cfg.BotToken)
			if err := telegram.RegisterWebhook(bot, cfg.WebhookURL, path); err != nil {
				return err
			}
			opts = append(opts, httpadapter.WithMount(path, telegram.WebhookHandler(handler)))
			logger.Info("Webhook registered", "bot", bot.Self.UserName)
		}

		// Event streams lift WriteTimeout for their own connection.
		srv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           httpadapter.NewHandler(st.engine, opts...),
			ReadHeaderTimeout: cfg.Timeout,
			WriteTimeout:      cfg.Timeout,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Server listening", "address", cfg.Listen)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Shutting down")
			return shutdown(srv)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
