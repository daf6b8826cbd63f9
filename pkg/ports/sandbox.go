package ports

// Sandbox is an isolated script execution context owned by exactly one session.
// Implementations are not safe for concurrent use; the session lock guards them.
type Sandbox interface {
	// Run compiles source and executes it as one top-level chunk.
	// Compile and runtime failures are reported as distinct wrapped errors.
	Run(source string) error

	// Globals lists the names of the currently declared global variables.
	Globals() []string

	// Number reads a global as a number (0 when it is not convertible).
	Number(name string) float64

	// String reads a global as a string ("" when it is not convertible).
	String(name string) string

	// Close releases the context. Every later call fails or returns zero values.
	Close() error
}

// SandboxFactory creates a fresh sandbox.
type SandboxFactory func() (Sandbox, error)
