package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

// TestCLI_InitOptimizeWriteSupport drives the full verb chain on the
// two-point dataset and checks the written support set.
func TestCLI_InitOptimizeWriteSupport(t *testing.T) {
	dir := t.TempDir()
	train := filepath.Join(dir, "train.txt")
	modelPath := filepath.Join(dir, "out.model")
	support := filepath.Join(dir, "support.txt")
	require.NoError(t, os.WriteFile(train, []byte("+1 1:1\n-1 1:-1\n"), 0o600))

	require.NoError(t, runCLI(t,
		"init", "-f", train, "-o", modelPath,
		"-k", "linear", "-a", "smo", "-A", "1"))

	require.NoError(t, runCLI(t,
		"optimize", "-m", modelPath, "-o", modelPath, "--max-iter", "2"))

	require.NoError(t, runCLI(t,
		"write-support", "-m", modelPath, "-o", support))

	out, err := os.ReadFile(support)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 2, "both examples end up in the support set")
	assert.Equal(t, "0\t0.5\t1:1", lines[0])
	assert.Equal(t, "0\t-0.5\t1:-1", lines[1])
}

// TestCLI_Recalculate round-trips a model through recalculate.
func TestCLI_Recalculate(t *testing.T) {
	dir := t.TempDir()
	train := filepath.Join(dir, "train.txt")
	modelPath := filepath.Join(dir, "out.model")
	require.NoError(t, os.WriteFile(train, []byte("+1 1:1\n-1 1:-1\n"), 0o600))

	require.NoError(t, runCLI(t,
		"init", "-f", train, "-o", modelPath,
		"-k", "linear", "-a", "perceptron", "-A", "0.1"))
	require.NoError(t, runCLI(t,
		"recalculate", "-m", modelPath, "-o", modelPath))
}

// TestCLI_InitErrors exercises the configuration-error taxonomy at the
// CLI boundary.
func TestCLI_InitErrors(t *testing.T) {
	dir := t.TempDir()
	train := filepath.Join(dir, "train.txt")
	require.NoError(t, os.WriteFile(train, []byte("+1 1:1\n"), 0o600))

	err := runCLI(t, "init", "-f", train, "-o", filepath.Join(dir, "m"),
		"-k", "cubic", "-a", "smo", "-A", "1")
	assert.ErrorContains(t, err, "unknown kernel")

	err = runCLI(t, "init", "-f", train, "-o", filepath.Join(dir, "m"),
		"-k", "linear", "-a", "sparsifier", "-A", "0.5,1,0")
	assert.ErrorContains(t, err, "predictions")
}
