package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dompet/internal/config"
	"dompet/internal/log"
)

func TestSetupLoggerWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dompet.log")
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json", LogFile: path}, log.ComponentApp)

	logger.Debug("hello", "k", "v")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"hello"`) {
		t.Errorf("log file missing record: %s", raw)
	}
	if logger.Component() != log.ComponentApp {
		t.Errorf("Component() = %q", logger.Component())
	}
}
