package sandbox_test

import (
	"testing"
	"time"

	"github.com/aretw0/tgquest/pkg/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandbox_RunAndRead(t *testing.T) {
	sb, err := sandbox.New()
	require.NoError(t, err)
	defer sb.Close()

	require.NoError(t, sb.Run(`gold = 10; name = "Ripley"; ratio = 2.5`))
	require.NoError(t, sb.Run(`gold = gold + 5`))

	assert.Equal(t, 15.0, sb.Number("gold"))
	assert.Equal(t, "Ripley", sb.String("name"))
	assert.Equal(t, 2.5, sb.Number("ratio"))
	assert.Equal(t, "15", sb.String("gold"))
	assert.Equal(t, 0.0, sb.Number("undefined_var"))
	assert.Equal(t, "", sb.String("undefined_var"))
}

func TestSandbox_Globals(t *testing.T) {
	sb, err := sandbox.New()
	require.NoError(t, err)

	require.NoError(t, sb.Run(`hp = 3`))
	globals := sb.Globals()
	assert.Contains(t, globals, "hp")
	assert.Contains(t, globals, "tostring", "base library stays available")
}

func TestSandbox_NoHostAccess(t *testing.T) {
	sb, err := sandbox.New()
	require.NoError(t, err)

	globals := sb.Globals()
	for _, name := range []string{"dofile", "loadfile", "print", "require", "io", "os"} {
		assert.NotContains(t, globals, name)
	}
	assert.ErrorIs(t, sb.Run(`dofile("/etc/passwd")`), sandbox.ErrRuntime)
}

func TestSandbox_CompileAndRuntimeErrors(t *testing.T) {
	sb, err := sandbox.New()
	require.NoError(t, err)

	err = sb.Run(`x = = 1`)
	assert.ErrorIs(t, err, sandbox.ErrCompile)

	err = sb.Run(`error("boom")`)
	assert.ErrorIs(t, err, sandbox.ErrRuntime)

	err = sb.Run(`local t = nil; t.field = 1`)
	assert.ErrorIs(t, err, sandbox.ErrRuntime)

	// State remains usable after failures.
	require.NoError(t, sb.Run(`ok = 1`))
	assert.Equal(t, 1.0, sb.Number("ok"))
}

func TestSandbox_Isolation(t *testing.T) {
	a, err := sandbox.New()
	require.NoError(t, err)
	b, err := sandbox.New()
	require.NoError(t, err)

	require.NoError(t, a.Run(`secret = 42`))
	assert.Equal(t, 0.0, b.Number("secret"))
	assert.NotContains(t, b.Globals(), "secret")
}

func TestSandbox_Close(t *testing.T) {
	sb, err := sandbox.New()
	require.NoError(t, err)
	require.NoError(t, sb.Run(`v = 1`))

	require.NoError(t, sb.Close())
	assert.ErrorIs(t, sb.Run(`v = 2`), sandbox.ErrClosed)
	assert.Nil(t, sb.Globals())
	assert.Equal(t, 0.0, sb.Number("v"))
	assert.ErrorIs(t, sb.Close(), sandbox.ErrClosed)
}

func TestSandbox_InstructionLimit(t *testing.T) {
	sb, err := sandbox.New(sandbox.WithInstructionLimit(10_000))
	require.NoError(t, err)
	defer sb.Close()

	done := make(chan error, 1)
	go func() { done <- sb.Run(`while true do end`) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, sandbox.ErrRuntime)
		assert.ErrorContains(t, err, "instruction limit exceeded")
	case <-time.After(5 * time.Second):
		t.Fatal("endless loop was not interrupted")
	}

	require.NoError(t, sb.Run(`n = 0; for i = 1, 100 do n = n + i end`), "budget is per run")
	assert.Equal(t, 5050.0, sb.Number("n"))
}

func TestSandbox_DefaultLimitAllowsOrdinaryScripts(t *testing.T) {
	sb, err := sandbox.New()
	require.NoError(t, err)
	defer sb.Close()

	require.NoError(t, sb.Run(`n = 0; for i = 1, 100000 do n = n + 1 end`))
	assert.Equal(t, 100000.0, sb.Number("n"))
}
