package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	var quiet, verbose bytes.Buffer

	New(&quiet, false).Debug("hidden")
	New(&quiet, false).Warn("shown", zap.String("k", "v"))
	New(&verbose, true).Debug("debug line")

	if strings.Contains(quiet.String(), "hidden") {
		t.Error("debug written without verbose")
	}
	if !strings.Contains(quiet.String(), "shown") || !strings.Contains(quiet.String(), `"k": "v"`) {
		t.Errorf("warning missing: %q", quiet.String())
	}
	if !strings.Contains(verbose.String(), "debug line") {
		t.Errorf("debug missing in verbose mode: %q", verbose.String())
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, closeFn, err := NewFile(path, false)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	logger.Info("hello", zap.Int("n", 3))
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) || !strings.Contains(string(data), `"n":3`) {
		t.Errorf("unexpected log content: %q", data)
	}
}
