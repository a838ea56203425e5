package credential

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVar = "PAIDATA_TEST_API_KEY"

func TestResolve_FromEnvironment(t *testing.T) {
	t.Setenv(testVar, "env-key")

	r := NewEnvResolver(testVar)
	c, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "env-key", c.Secret())
}

func TestResolve_SuppliedWinsOverEnvironment(t *testing.T) {
	t.Setenv(testVar, "env-key")

	r := NewEnvResolver(testVar)
	_, err := r.Resolve()
	require.NoError(t, err)

	require.NoError(t, r.Supply("typed-key"))
	for i := 0; i < 3; i++ {
		c, err := r.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "typed-key", c.Secret())
	}
}

func TestResolve_MissingWhenNothingAvailable(t *testing.T) {
	t.Setenv(testVar, "")

	r := NewEnvResolver(testVar)
	_, err := r.Resolve()
	assert.ErrorIs(t, err, ErrMissing)
}

func TestSupply_EmptyValueIsMissing(t *testing.T) {
	t.Setenv(testVar, "")

	r := NewEnvResolver(testVar)
	assert.ErrorIs(t, r.Supply(""), ErrMissing)
	assert.ErrorIs(t, r.Supply("   "), ErrMissing)

	_, err := r.Resolve()
	assert.ErrorIs(t, err, ErrMissing)
}

func TestSupply_EmptyDoesNotClearExisting(t *testing.T) {
	r := NewResolver(nil)
	require.NoError(t, r.Supply("first"))
	assert.Error(t, r.Supply(""))

	c, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "first", c.Secret())
}

func TestResolve_IsIdempotentAcrossEnvChanges(t *testing.T) {
	t.Setenv(testVar, "one")

	r := NewEnvResolver(testVar)
	first, err := r.Resolve()
	require.NoError(t, err)

	t.Setenv(testVar, "two")
	second, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolvers_DoNotShareState(t *testing.T) {
	a := NewResolver(nil)
	b := NewResolver(nil)
	require.NoError(t, a.Supply("alpha"))

	_, err := b.Resolve()
	assert.ErrorIs(t, err, ErrMissing)
}

func TestResolve_DoesNotWriteEnvironment(t *testing.T) {
	t.Setenv(testVar, "")

	r := NewEnvResolver(testVar)
	require.NoError(t, r.Supply("typed-key"))
	assert.Equal(t, "", os.Getenv(testVar))
}

func TestCredential_StringRedacts(t *testing.T) {
	c, err := FromString("sk-very-secret")
	require.NoError(t, err)
	assert.NotContains(t, c.String(), "secret")
	assert.Equal(t, "<unset>", Credential{}.String())
}

func TestNewEnvResolver_DefaultVar(t *testing.T) {
	r := NewEnvResolver("")
	assert.Equal(t, "env:"+DefaultEnvVar, r.Source().Name())
}

func TestPromptTerminal_PipedInput(t *testing.T) {
	in := pipeFile(t, "piped-key\n")
	var out bytes.Buffer

	r := NewResolver(nil)
	require.NoError(t, PromptTerminal(r, in, &out, "OpenAI API key"))

	c, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "piped-key", c.Secret())
	assert.NotContains(t, out.String(), "piped-key")
}

func TestPromptTerminal_EmptyInputIsMissing(t *testing.T) {
	in := pipeFile(t, "\n")
	var out bytes.Buffer

	r := NewResolver(nil)
	assert.ErrorIs(t, PromptTerminal(r, in, &out, "OpenAI API key"), ErrMissing)
}

// pipeFile returns a regular file holding content, which term.IsTerminal rejects.
func pipeFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}
