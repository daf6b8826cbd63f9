package sandbox

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Shopify/go-lua"
	"github.com/aretw0/tgquest/pkg/ports"
)

var (
	// ErrCompile is returned when a script fails to load.
	ErrCompile = errors.New("script compilation failed")
	// ErrRuntime is returned when a loaded script fails while running.
	ErrRuntime = errors.New("script execution failed")
	// ErrClosed is returned by every call on a closed sandbox.
	ErrClosed = errors.New("sandbox is closed")
)

// DefaultInstructionLimit bounds the VM instructions of a single Run.
const DefaultInstructionLimit = 10_000_000

// hostFunctions are removed from the base library after it is opened.
var hostFunctions = []string{"dofile", "loadfile", "print", "require"}

// Sandbox is a Lua state bound to one session.
type Sandbox struct {
	state *lua.State
	limit int
}

var _ ports.Sandbox = (*Sandbox)(nil)

// Option configures a Sandbox.
type Option func(*Sandbox)

// WithInstructionLimit caps the instructions a script may execute per Run.
// Zero or less disables the cap.
func WithInstructionLimit(n int) Option {
	return func(s *Sandbox) {
		s.limit = n
	}
}

// New creates a sandbox with the base library only.
func New(opts ...Option) (*Sandbox, error) {
	s := &Sandbox{limit: DefaultInstructionLimit}
	for _, opt := range opts {
		opt(s)
	}

	l := lua.NewState()
	lua.Require(l, "_G", lua.BaseOpen, true)
	l.Pop(1)

	for _, name := range hostFunctions {
		l.PushNil()
		l.SetGlobal(name)
	}
	s.state = l
	return s, nil
}

// Factory adapts New to ports.SandboxFactory.
func Factory() (ports.Sandbox, error) {
	return New()
}

// Run compiles source and executes it as a single top-level chunk.
func (s *Sandbox) Run(source string) (err error) {
	if s.state == nil {
		return ErrClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRuntime, r)
		}
	}()

	if err := lua.LoadString(s.state, source); err != nil {
		s.state.SetTop(0)
		return fmt.Errorf("%w: %v", ErrCompile, err)
	}
	if s.limit > 0 {
		// The count hook fires once the budget is spent; setting it resets the counter.
		lua.SetDebugHook(s.state, exhausted, lua.MaskCount, s.limit)
		defer lua.SetDebugHook(s.state, nil, 0, 0)
	}
	if err := s.state.ProtectedCall(0, 0, 0); err != nil {
		s.state.SetTop(0)
		return fmt.Errorf("%w: %v", ErrRuntime, err)
	}
	return nil
}

func exhausted(l *lua.State, _ lua.Debug) {
	lua.Errorf(l, "instruction limit exceeded")
}

// Globals lists the string keys of the global table, sorted.
func (s *Sandbox) Globals() []string {
	if s.state == nil {
		return nil
	}
	l := s.state

	var names []string
	l.PushGlobalTable()
	l.PushNil()
	for l.Next(-2) {
		if l.TypeOf(-2) == lua.TypeString {
			name, _ := l.ToString(-2)
			names = append(names, name)
		}
		l.Pop(1)
	}
	l.Pop(1)

	sort.Strings(names)
	return names
}

// Number reads a global with Lua's number coercion (numeric strings convert).
func (s *Sandbox) Number(name string) float64 {
	if s.state == nil {
		return 0
	}
	s.state.Global(name)
	v, _ := s.state.ToNumber(-1)
	s.state.Pop(1)
	return v
}

// String reads a global with Lua's string coercion (numbers convert).
func (s *Sandbox) String(name string) string {
	if s.state == nil {
		return ""
	}
	s.state.Global(name)
	v, _ := s.state.ToString(-1)
	s.state.Pop(1)
	return v
}

// Close drops the Lua state. The VM is garbage collected once unreferenced.
func (s *Sandbox) Close() error {
	if s.state == nil {
		return ErrClosed
	}
	s.state = nil
	return nil
}
