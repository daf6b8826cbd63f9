package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/aretw0/tgquest/internal/logging"
	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Poller fetches updates with long polling and feeds them to a Handler.
type Poller struct {
	api     API
	handler *Handler
	logger  *slog.Logger
	backoff *backoff.ExponentialBackOff
	idle    time.Duration
	timeout int
}

// PollerOption configures the Poller.
type PollerOption func(*Poller)

// WithPollLogger sets the logger.
func WithPollLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// WithPollTimeout overrides the long-poll timeout in seconds.
func WithPollTimeout(seconds int) PollerOption {
	return func(p *Poller) {
		p.timeout = seconds
	}
}

// NewPoller creates a Poller.
func NewPoller(api API, handler *Handler, opts ...PollerOption) *Poller {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = 0

	p := &Poller{
		api:     api,
		handler: handler,
		logger:  logging.NewNop(),
		backoff: b,
		idle:    200 * time.Millisecond,
		timeout: pollTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled. Transport errors are retried forever
// with exponential backoff between 1s and 15s.
func (p *Poller) Run(ctx context.Context) error {
	offset := 0
	p.backoff.Reset()

	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("polling stopped")
			return nil
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = p.timeout

		updates, err := p.api.GetUpdates(u)
		if err != nil {
			d := retryDelay(err, p.backoff.NextBackOff())
			p.logger.Warn("Polling failed", "err", err, "retry_in", d)
			if sleep(ctx, d) != nil {
				return nil
			}
			continue
		}
		p.backoff.Reset()

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
		}
		p.handler.HandleBatch(ctx, updates)

		if len(updates) == 0 {
			if sleep(ctx, p.idle) != nil {
				return nil
			}
		}
	}
}

// retryDelay honours Telegram's retry_after and clamps the result to [1s, 15s].
func retryDelay(err error, next time.Duration) time.Duration {
	d := next
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		d = time.Duration(apiErr.RetryAfter) * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() && d < 2*time.Second {
		d = 2 * time.Second
	}
	return min(max(d, time.Second), 15*time.Second)
}
