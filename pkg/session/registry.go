package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tgquest/internal/logging"
	"github.com/aretw0/tgquest/pkg/ports"
)

// DefaultLockTTL bounds how long a replica may hold the distributed lock of a user.
const DefaultLockTTL = 30 * time.Second

// Registry maps user ids to sessions. Safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(r *Registry) {
		r.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreate returns the session of userID, creating it with defaults on first access.
func (r *Registry) GetOrCreate(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		s = newSession(userID)
		r.sessions[userID] = s
		r.logger.Debug("session created", "user_id", userID)
	}
	return s
}

// WithSession runs fn while holding the session of userID exclusively.
func (r *Registry) WithSession(ctx context.Context, userID string, fn func(context.Context, *Session) error) error {
	s := r.GetOrCreate(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, userID, r.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				r.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"user_id", userID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx, s)
}

// Len returns the number of sessions ever created.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close releases every live sandbox. Sessions stay registered.
func (r *Registry) Close() error {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		s.mu.Lock()
		if s.sandbox != nil {
			if err := s.Close(); err != nil {
				errs = append(errs, fmt.Errorf("user %s: %w", s.UserID, err))
			}
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}
