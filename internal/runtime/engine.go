package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tgquest/internal/logging"
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/ports"
	"github.com/aretw0/tgquest/pkg/random"
	"github.com/aretw0/tgquest/pkg/sandbox"
	"github.com/aretw0/tgquest/pkg/session"
)

// ScriptErrorText replaces the screen text when its script fails to compile or run.
const ScriptErrorText = "Error during script execution"

// Engine is the core state machine runner.
type Engine struct {
	doc        *domain.QuestDocument
	rng        random.Source
	newSandbox ports.SandboxFactory
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	silentMiss bool
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithRandomSource sets the source used to pick among random exits.
func WithRandomSource(rng random.Source) EngineOption {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithSandboxFactory replaces the Lua sandbox.
func WithSandboxFactory(f ports.SandboxFactory) EngineOption {
	return func(e *Engine) {
		e.newSandbox = f
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSilentMiss makes unmatched input produce no reply instead of a re-render.
func WithSilentMiss(silent bool) EngineOption {
	return func(e *Engine) {
		e.silentMiss = silent
	}
}

// NewEngine creates an engine over a validated document.
func NewEngine(doc *domain.QuestDocument, opts ...EngineOption) *Engine {
	e := &Engine{
		doc:        doc,
		newSandbox: sandbox.Factory,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		rng, err := random.New()
		if err != nil {
			e.logger.Warn("Falling back to time-seeded random source", "err", err)
			rng = random.NewSeeded(uint64(time.Now().UnixNano()), 0)
		}
		e.rng = rng
	}
	return e
}

// Document returns the quest document.
func (e *Engine) Document() *domain.QuestDocument {
	return e.doc
}

// Inspect returns the screen ids in document order.
func (e *Engine) Inspect() []string {
	return append([]string(nil), e.doc.Order...)
}

// Start moves the session to the initial screen and renders it.
func (e *Engine) Start(ctx context.Context, sess *session.Session) (*domain.Reply, error) {
	e.emitLeave(ctx, sess)
	sess.CurrentScreen = e.doc.InitialScreen
	return e.Show(ctx, sess)
}

// Handle processes one inbound message. A nil reply means nothing should be sent.
func (e *Engine) Handle(ctx context.Context, sess *session.Session, text string) (*domain.Reply, error) {
	if name, ok := domain.CommandName(text); ok {
		if name == domain.StartCommand {
			return e.Start(ctx, sess)
		}
		e.logger.Debug("command ignored", "user_id", sess.UserID, "command", name)
		return nil, nil
	}

	if sess.CurrentScreen == "" {
		return e.Start(ctx, sess)
	}

	target, ok := e.Resolve(sess, text)
	if !ok {
		if e.silentMiss {
			return nil, nil
		}
		return e.Show(ctx, sess)
	}

	if e.doc.Screen(target) != nil {
		e.emitLeave(ctx, sess)
		sess.CurrentScreen = target
	}
	return e.Show(ctx, sess)
}

// Show runs the entry sequence of the current screen and renders it.
func (e *Engine) Show(ctx context.Context, sess *session.Session) (*domain.Reply, error) {
	screen := e.doc.Screen(sess.CurrentScreen)
	if screen == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrScreenNotFound, sess.CurrentScreen)
	}

	if screen.Quest {
		e.resetSandbox(ctx, sess)
	}
	sess.MergeVariableTypes(screen.Variables)

	text := e.RenderText(sess, screen.Text)

	if screen.HasScript {
		if sb := sess.Sandbox(); sb != nil {
			if err := sb.Run(screen.Script); err != nil {
				text = ScriptErrorText
				e.emitScriptError(ctx, sess, err)
			}
		}
	}

	if sess.Sandbox() != nil {
		text = e.substitute(sess, text)
	}

	e.emitEnter(ctx, sess)

	return &domain.Reply{
		UserID:    sess.UserID,
		ScreenID:  screen.ID,
		Text:      text,
		Keyboard:  e.Keyboard(sess, screen),
		ParseMode: domain.ParseModeHTML,
	}, nil
}

func (e *Engine) resetSandbox(ctx context.Context, sess *session.Session) {
	sb, err := e.newSandbox()
	if err != nil {
		e.logger.Error("Failed to create sandbox", "user_id", sess.UserID, "screen", sess.CurrentScreen, "err", err)
		sb = nil
	}
	if err := sess.ReplaceSandbox(sb); err != nil {
		e.logger.Debug("previous sandbox close failed", "user_id", sess.UserID, "err", err)
	}

	if e.hooks.OnSandboxReset != nil {
		e.hooks.OnSandboxReset(ctx, e.screenEvent(domain.EventSandboxReset, sess))
	}
}

func (e *Engine) emitEnter(ctx context.Context, sess *session.Session) {
	e.logger.Debug("screen entered", "user_id", sess.UserID, "screen", sess.CurrentScreen, "language", sess.Language)
	if e.hooks.OnScreenEnter != nil {
		e.hooks.OnScreenEnter(ctx, e.screenEvent(domain.EventScreenEnter, sess))
	}
}

func (e *Engine) emitLeave(ctx context.Context, sess *session.Session) {
	if sess.CurrentScreen == "" || e.hooks.OnScreenLeave == nil {
		return
	}
	e.hooks.OnScreenLeave(ctx, e.screenEvent(domain.EventScreenLeave, sess))
}

func (e *Engine) emitScriptError(ctx context.Context, sess *session.Session, err error) {
	phase := "runtime"
	if errors.Is(err, sandbox.ErrCompile) {
		phase = "compile"
	}
	e.logger.Debug("script failed", "user_id", sess.UserID, "screen", sess.CurrentScreen, "phase", phase, "err", err)

	if e.hooks.OnScriptError != nil {
		e.hooks.OnScriptError(ctx, &domain.ScriptEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventScriptError, UserID: sess.UserID},
			ScreenID:  sess.CurrentScreen,
			Phase:     phase,
			Err:       err,
		})
	}
}

func (e *Engine) screenEvent(t domain.EventType, sess *session.Session) *domain.ScreenEvent {
	return &domain.ScreenEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: t, UserID: sess.UserID},
		ScreenID:  sess.CurrentScreen,
		Language:  sess.Language,
	}
}
