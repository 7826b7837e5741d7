// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes through t.Log, so
// log lines only show up for failing tests or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(logWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type logWriter struct {
	t testing.TB
}

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// WriteStatements writes one statement per line to dir/name and returns the
// file path.
func WriteStatements(t testing.TB, dir, name string, stmts ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(stmts, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
