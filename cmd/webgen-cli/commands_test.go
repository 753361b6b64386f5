package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
generation:
  base_dir: examples
  isolate: true
`), 0o644))
	return dir
}

// TestMaterializeCommand 验证离线落盘子命令
func TestMaterializeCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "site")
	payload := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(payload, []byte(`{"index.html":"<p>x</p>"}`), 0o644))

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"materialize", payload, "--config-dir", writeConfigDir(t), "--dir", out, "--no-isolate"})
	require.NoError(t, cmd.Execute())

	b, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", string(b))
	assert.Contains(t, buf.String(), "Files written to "+out)
}

// TestMaterializeCommand_Malformed 验证非法文件返回错误
func TestMaterializeCommand_Malformed(t *testing.T) {
	payload := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(payload, []byte(`[1,2,3]`), 0o644))

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"materialize", payload, "--config-dir", writeConfigDir(t), "--dir", t.TempDir()})
	assert.Error(t, cmd.Execute())
}
