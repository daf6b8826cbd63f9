package tgquest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tgquest/internal/logging"
	"github.com/aretw0/tgquest/internal/runtime"
	"github.com/aretw0/tgquest/pkg/document"
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/ports"
	"github.com/aretw0/tgquest/pkg/random"
	"github.com/aretw0/tgquest/pkg/session"
)

// Engine is the high-level entry point of the library.
// It owns the session registry and serializes events per user around the runtime.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Registry
	doc      *domain.QuestDocument
	logger   *slog.Logger

	hooks      domain.LifecycleHooks
	rng        random.Source
	sandboxes  ports.SandboxFactory
	locker     ports.DistributedLocker
	silentMiss bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRandomSource pins the source used for random exits.
func WithRandomSource(rng random.Source) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithSandboxFactory replaces the Lua sandbox.
func WithSandboxFactory(f ports.SandboxFactory) Option {
	return func(e *Engine) {
		e.sandboxes = f
	}
}

// WithLocker serializes each user across replicas sharing the locker.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithDocument injects an already loaded document. The path given to New is ignored.
func WithDocument(doc *domain.QuestDocument) Option {
	return func(e *Engine) {
		e.doc = doc
	}
}

// WithSilentMiss suppresses the reply to input that matches no button.
func WithSilentMiss(silent bool) Option {
	return func(e *Engine) {
		e.silentMiss = silent
	}
}

// New loads the quest document at path and builds an Engine.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if eng.doc == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no document is provided")
		}
		doc, err := document.LoadFile(path)
		if err != nil {
			return nil, err
		}
		eng.doc = doc
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithSilentMiss(eng.silentMiss),
	}
	if eng.rng != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithRandomSource(eng.rng))
	}
	if eng.sandboxes != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithSandboxFactory(eng.sandboxes))
	}
	eng.runtime = runtime.NewEngine(eng.doc, runtimeOpts...)

	registryOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		registryOpts = append(registryOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewRegistry(registryOpts...)

	return eng, nil
}

// Start puts the user on the initial screen, as the /start command does.
func (e *Engine) Start(ctx context.Context, userID string) (*domain.Reply, error) {
	return e.do(ctx, userID, func(ctx context.Context, s *session.Session) (*domain.Reply, error) {
		return e.runtime.Start(ctx, s)
	})
}

// Handle processes one inbound message of userID.
// A nil reply with a nil error means nothing has to be sent.
func (e *Engine) Handle(ctx context.Context, userID, text string) (*domain.Reply, error) {
	return e.do(ctx, userID, func(ctx context.Context, s *session.Session) (*domain.Reply, error) {
		return e.runtime.Handle(ctx, s, text)
	})
}

func (e *Engine) do(ctx context.Context, userID string, fn func(context.Context, *session.Session) (*domain.Reply, error)) (reply *domain.Reply, err error) {
	err = e.sessions.WithSession(ctx, userID, func(ctx context.Context, s *session.Session) (err error) {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("Recovered from engine panic", "user_id", userID, "panic", r)
				err = fmt.Errorf("%w: %v", domain.ErrInternal, r)
			}
		}()
		reply, err = fn(ctx, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// Inspect returns the screen ids in document order.
func (e *Engine) Inspect() []string {
	return e.runtime.Inspect()
}

// Document returns the loaded quest document.
func (e *Engine) Document() *domain.QuestDocument {
	return e.doc
}

// Sessions returns how many users the engine has seen.
func (e *Engine) Sessions() int {
	return e.sessions.Len()
}

// Close releases every session sandbox.
func (e *Engine) Close() error {
	return e.sessions.Close()
}
