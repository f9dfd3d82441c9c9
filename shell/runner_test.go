package shell

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
}

func TestExecRunnerInheritsOutput(t *testing.T) {
	requireSh(t)
	var out bytes.Buffer
	r := &ExecRunner{Stdout: &out, Stderr: &out}

	err := Script(context.Background(), r, t.TempDir(), "echo building && pwd")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "building")
}

func TestExecRunnerFailure(t *testing.T) {
	requireSh(t)
	var out bytes.Buffer
	r := &ExecRunner{Stdout: &out, Stderr: &out}

	err := Script(context.Background(), r, t.TempDir(), "exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sh -c exit 3")
}

func TestExecRunnerCancelled(t *testing.T) {
	requireSh(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	assert.Error(t, Script(ctx, r, t.TempDir(), "sleep 5"))
}
