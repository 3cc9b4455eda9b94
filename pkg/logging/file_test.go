package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

// newTestLogger opens a file logger in a fresh temp dir and returns it with
// the log path
func newTestLogger(t *testing.T, config FileLoggerConfig) (*FileLogger, string) {
	t.Helper()

	if config.Path == "" {
		config.Path = filepath.Join(t.TempDir(), "run.log")
	}
	logger, err := NewFileLogger(config)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	return logger, config.Path
}

// readLog closes logger and returns the content of path
func readLog(t *testing.T, logger Logger, path string) string {
	t.Helper()

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", line, err)
	}
	return entry
}

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "run.log")
	logger, _ := newTestLogger(t, FileLoggerConfig{Path: path, Format: FormatText, Level: InfoLevel})
	defer logger.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file was not created: %v", err)
	}
}

func TestFileLogger_Levels(t *testing.T) {
	tests := []struct {
		level   Level
		present []string
		absent  []string
	}{
		{DebugLevel, []string{"Skipped file", "Copied file", "Destination busy", "Action failed"}, nil},
		{InfoLevel, []string{"Copied file", "Destination busy", "Action failed"}, []string{"Skipped file"}},
		{ErrorLevel, []string{"Action failed"}, []string{"Skipped file", "Copied file", "Destination busy"}},
	}

	for _, tt := range tests {
		t.Run(LevelString(tt.level), func(t *testing.T) {
			logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatText, Level: tt.level})

			ctx := context.Background()
			logger.Debug(ctx, "Skipped file", nil)
			logger.Info(ctx, "Copied file", nil)
			logger.Warn(ctx, "Destination busy", nil)
			logger.Error(ctx, "Action failed", nil, nil)

			content := readLog(t, logger, path)
			for _, msg := range tt.present {
				if !strings.Contains(content, msg) {
					t.Errorf("%q should be logged at %s", msg, LevelString(tt.level))
				}
			}
			for _, msg := range tt.absent {
				if strings.Contains(content, msg) {
					t.Errorf("%q should be filtered at %s", msg, LevelString(tt.level))
				}
			}
		})
	}
}

func TestFileLogger_TextFormat(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatText, Level: InfoLevel})

	logger.Info(context.Background(), "Copied file", Fields{"destination": "out", "bytes": 42})
	content := readLog(t, logger, path)

	for _, want := range []string{"level=info", `msg="Copied file"`, "destination=out", "bytes=42"} {
		if !strings.Contains(content, want) {
			t.Errorf("text log missing %q: %s", want, content)
		}
	}
}

func TestFileLogger_JSONFormat(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatJSON, Level: InfoLevel})

	logger.Info(context.Background(), "Copied file", Fields{"destination": "out", "bytes": 42})
	entry := decodeLine(t, strings.TrimSpace(readLog(t, logger, path)))

	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["message"] != "Copied file" {
		t.Errorf("message = %v, want 'Copied file'", entry["message"])
	}
	if entry["destination"] != "out" {
		t.Errorf("destination = %v, want 'out'", entry["destination"])
	}
	if entry["timestamp"] == nil {
		t.Error("timestamp should be present")
	}
}

func TestFileLogger_ErrorWithErr(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatJSON, Level: InfoLevel})

	logger.Error(context.Background(), "Action failed", errors.New("permission denied"), Fields{"action": "remove"})
	entry := decodeLine(t, strings.TrimSpace(readLog(t, logger, path)))

	if entry["error"] != "permission denied" {
		t.Errorf("error = %v, want 'permission denied'", entry["error"])
	}
	if entry["action"] != "remove" {
		t.Errorf("action = %v, want 'remove'", entry["action"])
	}
}

func TestFileLogger_WithFields(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatJSON, Level: InfoLevel})

	scoped := logger.WithFields(Fields{"operation_id": "op-1"}).WithFields(Fields{"destination": "out"})
	scoped.Info(context.Background(), "Removed stale entry", Fields{"path": "out/stale.txt"})
	entry := decodeLine(t, strings.TrimSpace(readLog(t, logger, path)))

	for key, want := range map[string]string{"operation_id": "op-1", "destination": "out", "path": "out/stale.txt"} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %q", key, entry[key], want)
		}
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatText, Level: InfoLevel, MaxSize: 50, MaxBackups: 2})

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		logger.Info(ctx, "Copying: fixtures/test-0.txt -> out/test-0.txt", nil)
	}
	readLog(t, logger, path)

	for _, name := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("%s should exist after rotation: %v", filepath.Base(name), err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("only MaxBackups backups should be kept")
	}
}

func TestFileLogger_ConcurrentWrites(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatText, Level: InfoLevel})

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				logger.Info(ctx, "Copied file", Fields{"worker": worker, "n": j})
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(readLog(t, logger, path)), "\n")
	if len(lines) != 1000 {
		t.Errorf("Expected 1000 log lines, got %d", len(lines))
	}
}

func TestFileLogger_WriteAfterClose(t *testing.T) {
	logger, _ := newTestLogger(t, FileLoggerConfig{Format: FormatText, Level: InfoLevel})

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Must not panic
	logger.Info(context.Background(), "late message", nil)
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestStreamLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStreamLogger(&buf, FormatJSON, WarnLevel)

	ctx := context.Background()
	logger.Info(ctx, "hidden", nil)
	logger.Warn(ctx, "shown", Fields{"path": "out/a.txt"})

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	if entry := decodeLine(t, lines[0]); entry["message"] != "shown" || entry["path"] != "out/a.txt" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNullLogger(t *testing.T) {
	var logger Logger = NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "warn", nil)
	logger.Error(ctx, "error", errors.New("x"), nil)

	if logger.WithFields(Fields{"key": "value"}) != logger {
		t.Error("WithFields should return the same null logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"DEBUG":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"ERROR":   ErrorLevel,
		"unknown": InfoLevel,
		"":        InfoLevel,
	}

	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLevelMapping(t *testing.T) {
	tests := []struct {
		level  Level
		name   string
		logrus logrus.Level
	}{
		{DebugLevel, "DEBUG", logrus.DebugLevel},
		{InfoLevel, "INFO", logrus.InfoLevel},
		{WarnLevel, "WARN", logrus.WarnLevel},
		{ErrorLevel, "ERROR", logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelString(tt.level); got != tt.name {
				t.Errorf("LevelString() = %q, want %q", got, tt.name)
			}
			if got := tt.level.logrus(); got != tt.logrus {
				t.Errorf("logrus() = %v, want %v", got, tt.logrus)
			}
		})
	}

	if got := LevelString(Level(99)); got != "UNKNOWN" {
		t.Errorf("LevelString(99) = %q, want UNKNOWN", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json": FormatJSON,
		"text": FormatText,
		"":     FormatText,
		"xml":  FormatText,
	}

	for input, want := range tests {
		if got := ParseFormat(input); got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", input, got, want)
		}
	}
}
