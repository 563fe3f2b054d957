package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestGenerateThenRun(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data", "sales.csv")

	code, out, _ := execute(t, "generate", "--out", csvPath, "--rows", "400", "--seed", "7")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Generated 400 rows")

	code, out, stderr := execute(t, "--csv", csvPath, "--base", dir, "--log-level", "warn")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "400 rows, 19 columns")
	assert.FileExists(t, filepath.Join(dir, "reports", "data_quality_report.md"))
	assert.FileExists(t, filepath.Join(dir, "reports", "hypothesis_testing.md"))
	assert.FileExists(t, filepath.Join(dir, "reports", "insight_summary.md"))

	code, _, stderr = execute(t, "run", "--csv", csvPath, "--base", dir)
	assert.Equal(t, 0, code, stderr)
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := execute(t, "--csv", filepath.Join(dir, "missing.csv"), "--base", dir)
	assert.Equal(t, 3, code)
	assert.Contains(t, stderr, "Error:")

	noKey := filepath.Join(dir, "nokey.csv")
	require.NoError(t, os.WriteFile(noKey, []byte("Device,Returned\nMobile,1\n"), 0644))
	cfgFile := filepath.Join(dir, "audit.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("input:\n  required_columns: []\n"), 0644))
	code, _, _ = execute(t, "--config", cfgFile, "--csv", noKey, "--base", dir)
	assert.Equal(t, 2, code, "the key column is always required")

	code, _, _ = execute(t, "--no-such-flag")
	assert.Equal(t, 2, code)

	code, _, _ = execute(t, "--config", filepath.Join(dir, "absent.yaml"))
	assert.Equal(t, 2, code)
}

func TestConfigCommand(t *testing.T) {
	code, out, _ := execute(t, "config", "--log-level", "debug")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "iqr_multiplier: 1.5")
	assert.Contains(t, out, "level: debug")
	assert.Contains(t, out, "csv_path: data/amazon_sales.csv")
}
