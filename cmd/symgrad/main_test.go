package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "symgrad "+version+"\n", out)
}

func TestOpsCmd(t *testing.T) {
	out, _, err := run(t, "ops")

	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		switch fields[0] {
		case "matmul":
			assert.Equal(t, []string{"2", "true"}, fields[1:3])
		case "_backward_relu":
			assert.Equal(t, "false", fields[2])
		case "__ewise_sum__":
			assert.Equal(t, "variadic", fields[1])
		}
	}
}

func TestPassesCmd(t *testing.T) {
	out, _, err := run(t, "passes")

	require.NoError(t, err)
	assert.Contains(t, out, "Gradient")
	assert.Contains(t, out, "grad_ys,grad_xs,grad_ys_out_grad")
}

func TestGradCmd_Tree(t *testing.T) {
	out, _, err := run(t, "grad", filepath.Join("testdata", "diamond.yaml"))

	require.NoError(t, err)
	assert.Contains(t, out, "== testdata/diamond.yaml")
	assert.Contains(t, out, "d/d x:0")
	assert.Contains(t, out, "[__ewise_sum__]")
	assert.Contains(t, out, "d/d a:0")
	assert.Contains(t, out, "seed:0")
}

func TestGradCmd_JSON(t *testing.T) {
	file := filepath.Join("testdata", "diamond.yaml")
	out, _, err := run(t, "grad", "--format", "json", file, file)
	require.NoError(t, err)

	var results []gradResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Gradients, results[1].Gradients)

	grads := results[0].Gradients
	require.Len(t, grads, 2)
	assert.Equal(t, "x:0", grads[0].X)
	assert.Equal(t, "__ewise_sum__", grads[0].Op)
	assert.Equal(t, "a:0", grads[1].X)
	assert.Equal(t, "seed:0", grads[1].Output)
	assert.Equal(t, 1, grads[1].Nodes)
}

func TestGradCmd_Errors(t *testing.T) {
	_, _, err := run(t, "grad")
	require.Error(t, err)

	_, _, err = run(t, "grad", "--format", "xml", filepath.Join("testdata", "diamond.yaml"))
	require.ErrorContains(t, err, "unknown --format")

	_, _, err = run(t, "grad", "--log-level", "loud", filepath.Join("testdata", "diamond.yaml"))
	require.ErrorContains(t, err, "invalid --log-level")

	_, _, err = run(t, "grad", "-j", "1", filepath.Join("testdata", "diamond.yaml"), filepath.Join("testdata", "unknown_op.yaml"))
	require.ErrorContains(t, err, "frobnicate")
}

func TestGradCmd_DebugLogging(t *testing.T) {
	_, stderr, err := run(t, "grad", "--log-level", "debug", filepath.Join("testdata", "diamond.yaml"))

	require.NoError(t, err)
	assert.Contains(t, stderr, "pass=Gradient")
	assert.Contains(t, stderr, "run_id=")
}
