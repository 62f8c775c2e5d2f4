package pkg

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	tests := []struct {
		name  string
		level slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLogLevel(tt.level)
			if got := GetLogLevel(); got != tt.level {
				t.Errorf("GetLogLevel() = %v, want %v", got, tt.level)
			}
		})
	}
}

func TestNewLogger_Text(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)
	SetLogLevel(slog.LevelInfo) // nil opts follow the shared level

	var buf bytes.Buffer
	logger := NewLogger(&buf, LogFormatText, nil)
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Info("test message")
	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("log output missing message: %s", buf.String())
	}
}

func TestNewLogger_JSON(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)
	SetLogLevel(slog.LevelInfo) // nil opts follow the shared level

	var buf bytes.Buffer
	logger := NewLogger(&buf, LogFormatJSON, nil)
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Info("test message")
	output := buf.String()
	if !strings.Contains(output, `"msg":"test message"`) {
		t.Errorf("JSON log output missing message: %s", output)
	}
}

func TestLogDebug(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogLevel(slog.LevelDebug)
	SetLogger(NewLogger(&buf, LogFormatText, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogDebug(ComponentSession, "debug message", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "debug message") {
		t.Errorf("debug log missing message: %s", output)
	}
	if !strings.Contains(output, "component=session") {
		t.Errorf("debug log missing component: %s", output)
	}
}

func TestLogInfo(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(&buf, LogFormatText, nil))

	LogInfo(ComponentTransport, "info message")
	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("info log missing message: %s", output)
	}
	if !strings.Contains(output, "component=transport") {
		t.Errorf("info log missing component: %s", output)
	}
}

func TestLogWarn(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(&buf, LogFormatText, nil))

	LogWarn(ComponentProtocol, "warn message")
	output := buf.String()
	if !strings.Contains(output, "warn message") {
		t.Errorf("warn log missing message: %s", output)
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(&buf, LogFormatText, nil))

	LogError(ComponentCritSec, "error message")
	output := buf.String()
	if !strings.Contains(output, "error message") {
		t.Errorf("error log missing message: %s", output)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	customLogger := NewLogger(&buf, LogFormatText, nil)
	SetLogger(customLogger)

	LogInfo(ComponentSession, "custom logger test")
	if !strings.Contains(buf.String(), "custom logger test") {
		t.Error("custom logger not used")
	}
}

func TestSetLogFormat_JSON(t *testing.T) {
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogFormat(LogFormatJSON)
	LogInfo(ComponentTransport, "json format test")
}

func TestDeviceLogger_BindsComponentAndUsbPath(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(&buf, LogFormatText, nil))

	log := DeviceLogger(ComponentSession, "1-2.4")
	log.Warn("bulk-out write failed", "err", "timeout")

	output := buf.String()
	if !strings.Contains(output, "component=session") {
		t.Errorf("missing component attr: %s", output)
	}
	if !strings.Contains(output, "usb_path=1-2.4") {
		t.Errorf("missing usb_path attr: %s", output)
	}
}

func TestDeviceLogger_SnapshotsDefaultLoggerAtCallTime(t *testing.T) {
	var before, after bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(&before, LogFormatText, nil))
	log := DeviceLogger(ComponentOrchestrator, "1-2")

	SetLogger(NewLogger(&after, LogFormatText, nil))
	log.Info("routed to the logger bound at DeviceLogger time")

	if before.Len() == 0 {
		t.Error("expected the snapshotted logger to receive the message")
	}
	if after.Len() != 0 {
		t.Error("did not expect the post-swap logger to receive anything")
	}
}
