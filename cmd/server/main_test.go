package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("anything else"))
}

func TestEnsureDBDir(t *testing.T) {
	require.NoError(t, ensureDBDir(":memory:"))
	require.NoError(t, ensureDBDir("local.db"))

	path := filepath.Join(t.TempDir(), "nested", "data", "crm.db")
	require.NoError(t, ensureDBDir(path))
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestLogFileWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "crmdesk.log")
	w, file, err := newLogFileWriter(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	line := []byte(strings.Repeat("a", 1023) + "\n")
	for range maxLogSizeBytes/len(line) + 10 {
		_, err := w.Write(line)
		require.NoError(t, err)
	}
	_, err = w.Write([]byte("last line\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.LessOrEqual(t, len(data), maxLogSizeBytes)
	require.True(t, bytes.HasSuffix(data, []byte("last line\n")))
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CRMDESK_DB_PATH", filepath.Join(dir, "crm.db"))
	t.Setenv("CRMDESK_UPLOADS_DIR", filepath.Join(dir, "uploads"))

	run := func(args ...string) string {
		t.Helper()
		a := &app{}
		defer a.close()
		root := rootCommand(a)
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(args)
		require.NoError(t, root.Execute())
		return out.String()
	}

	require.Contains(t, run("migrate"), "schema at version")

	out := run("apikey", "create", "--name=owner", "--scopes=admin")
	require.Contains(t, out, "id:     KEY001")
	require.Contains(t, out, "token:  crm_")

	require.Contains(t, run("apikey", "list"), "owner")
	require.Contains(t, run("ids"), "KEY001")
	require.Equal(t, "KEY 1\n", run("ids", "KEY"))
	require.Equal(t, "CLI 0\n", run("ids", "CLI"))
	require.Contains(t, run("ids", "KEY001"), "KEY001 issued")
	require.Contains(t, run("ids", "KEY002"), "KEY002 not issued")

	require.Contains(t, run("apikey", "revoke", "KEY001"), "revoked KEY001")
	require.Contains(t, run("apikey", "list"), "revoked")

	a := &app{}
	defer a.close()
	root := rootCommand(a)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"ids", "cli"})
	require.Error(t, root.Execute())
}
