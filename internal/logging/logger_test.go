package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger_CreatesDirAndWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}

	log.Info("probe_ok",
		zap.String("account_id", "a1"),
		zap.String("check", "ipify"),
		zap.Float64("latency_ms", 12.5),
	)
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "proxyprobe.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected a log line to be written")
	}
}
