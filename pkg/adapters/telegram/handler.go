package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/aretw0/tgquest/internal/logging"
	"github.com/aretw0/tgquest/pkg/ports"
	"github.com/aretw0/tgquest/pkg/runner"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

// Outcomes reported to the UpdateObserver.
const (
	OutcomeOK      = "ok"
	OutcomeIgnored = "ignored"
	OutcomeError   = "error"
)

// UpdateObserver receives the outcome of every update (metrics).
type UpdateObserver func(outcome string, took time.Duration)

// Handler routes updates to the engine and replies to the dispatcher.
type Handler struct {
	engine     ports.QuestEngine
	dispatcher ports.Dispatcher
	logger     *slog.Logger
	observe    UpdateObserver
	workers    int
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithObserver registers an UpdateObserver.
func WithObserver(fn UpdateObserver) HandlerOption {
	return func(h *Handler) {
		h.observe = fn
	}
}

// WithWorkers bounds how many users are processed concurrently.
func WithWorkers(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.workers = n
		}
	}
}

// NewHandler creates a Handler.
func NewHandler(engine ports.QuestEngine, dispatcher ports.Dispatcher, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:     engine,
		dispatcher: dispatcher,
		logger:     logging.NewNop(),
		observe:    func(string, time.Duration) {},
		workers:    8,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleUpdate processes a single update. Failures are logged, never returned:
// one broken update must not stop the others.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	start := time.Now()
	outcome := h.handle(ctx, upd)
	h.observe(outcome, time.Since(start))
}

func (h *Handler) handle(ctx context.Context, upd tgbotapi.Update) string {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return OutcomeIgnored
	}
	userID := strconv.FormatInt(msg.From.ID, 10)

	text, err := runner.SanitizeInput(msg.Text)
	if err != nil {
		h.logger.Warn("Rejected message", "user_id", userID, "update_id", upd.UpdateID, "err", err)
		return OutcomeIgnored
	}

	reply, err := h.engine.Handle(ctx, userID, text)
	if err != nil {
		h.logger.Error("Failed to handle message", "user_id", userID, "update_id", upd.UpdateID, "err", err)
		return OutcomeError
	}
	if reply == nil {
		return OutcomeIgnored
	}

	if err := h.dispatcher.Dispatch(ctx, reply); err != nil {
		h.logger.Error("Failed to deliver reply", "user_id", userID, "screen", reply.ScreenID, "err", err)
		return OutcomeError
	}
	return OutcomeOK
}

// HandleBatch processes updates concurrently across users while keeping the
// order of each user's updates. It returns once every update is done.
func (h *Handler) HandleBatch(ctx context.Context, updates []tgbotapi.Update) {
	var order []int64
	byUser := make(map[int64][]tgbotapi.Update)
	for _, upd := range updates {
		key := senderID(upd)
		if _, seen := byUser[key]; !seen {
			order = append(order, key)
		}
		byUser[key] = append(byUser[key], upd)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for _, key := range order {
		queue := byUser[key]
		g.Go(func() error {
			for _, upd := range queue {
				h.HandleUpdate(gctx, upd)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// senderID groups updates; updates without a sender share group 0.
func senderID(upd tgbotapi.Update) int64 {
	if upd.Message != nil && upd.Message.From != nil {
		return upd.Message.From.ID
	}
	return 0
}
