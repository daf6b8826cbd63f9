package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/tgquest/internal/logging"
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/ports"
	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Dispatcher sends replies as Telegram messages.
type Dispatcher struct {
	api        API
	logger     *slog.Logger
	maxRetries uint64
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// DispatcherOption configures the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets the logger.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMaxRetries bounds the retries of a failed send.
func WithMaxRetries(n uint64) DispatcherOption {
	return func(d *Dispatcher) {
		d.maxRetries = n
	}
}

// NewDispatcher creates a Dispatcher over api.
func NewDispatcher(api API, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		api:        api,
		logger:     logging.NewNop(),
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends reply to the chat of reply.UserID.
// Client errors (bad request, blocked by user) are not retried.
func (d *Dispatcher) Dispatch(ctx context.Context, reply *domain.Reply) error {
	chatID, err := strconv.ParseInt(reply.UserID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram user id %q: %w", reply.UserID, err)
	}
	msg := NewMessage(chatID, reply)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 15 * time.Second

	op := func() error {
		_, err := d.api.Send(msg)
		if err == nil {
			return nil
		}
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			if apiErr.RetryAfter > 0 {
				// Telegram asks for an explicit pause before the next attempt.
				if err := sleep(ctx, time.Duration(apiErr.RetryAfter)*time.Second); err != nil {
					return backoff.Permanent(err)
				}
				return err
			}
			if apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		d.logger.Warn("Send failed, retrying", "user_id", reply.UserID, "err", err, "retry_in", next)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, d.maxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}

// NewMessage builds the HTML message with the reply keyboard.
// A reply without labels removes any keyboard left by a previous screen.
func NewMessage(chatID int64, reply *domain.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = reply.ParseMode
	if msg.ParseMode == "" {
		msg.ParseMode = tgbotapi.ModeHTML
	}

	var rows [][]tgbotapi.KeyboardButton
	for _, row := range reply.Keyboard {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, buttons)
	}

	if len(rows) == 0 {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	} else {
		msg.ReplyMarkup = tgbotapi.ReplyKeyboardMarkup{
			Keyboard:       rows,
			ResizeKeyboard: true,
		}
	}
	return msg
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
