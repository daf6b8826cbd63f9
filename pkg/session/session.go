package session

import (
	"sync"

	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/ports"
)

// Session is the mutable state of one user. Fields must only be touched while
// the session is held through Registry.WithSession.
type Session struct {
	UserID        string
	CurrentScreen string
	Language      string

	// VariableTypes only grows. Entries outlive the sandbox that declared them.
	VariableTypes map[string]domain.TypeTag

	sandbox ports.Sandbox
	mu      sync.Mutex
}

func newSession(userID string) *Session {
	return &Session{
		UserID:        userID,
		Language:      domain.DefaultLanguage,
		VariableTypes: make(map[string]domain.TypeTag),
	}
}

// Sandbox returns the live sandbox, or nil.
func (s *Session) Sandbox() ports.Sandbox {
	return s.sandbox
}

// ReplaceSandbox closes the current sandbox (if any) and installs next.
// Passing nil leaves the session without a sandbox.
func (s *Session) ReplaceSandbox(next ports.Sandbox) error {
	var err error
	if s.sandbox != nil {
		err = s.sandbox.Close()
	}
	s.sandbox = next
	return err
}

// MergeVariableTypes adds or overwrites entries. Nothing is ever removed.
func (s *Session) MergeVariableTypes(vars map[string]domain.TypeTag) {
	for name, tag := range vars {
		s.VariableTypes[name] = tag
	}
}

// Close tears down the sandbox.
func (s *Session) Close() error {
	return s.ReplaceSandbox(nil)
}
