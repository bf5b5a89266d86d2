package common

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "airmon.uz/telemetry-service/pkg/testing"
)

func TestLoggingCapture(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	logger := GetLogger()
	logger.Info("Test log message", zap.String("key", "value"))

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Test log message") {
		t.Errorf("expected log output to contain message, got: %s", logOutput)
	}
}

func TestNamedLogger(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	logger := GetLoggerWith(LoggerNameAuth, zap.String(LoggerFieldCategory, "token"))
	logger.Info("issued token pair")

	logOutput := buf.String()
	if !strings.Contains(logOutput, LoggerNameAuth) {
		t.Errorf("expected log output to contain logger name, got: %s", logOutput)
	}
	if !strings.Contains(logOutput, "token") {
		t.Errorf("expected log output to contain category field, got: %s", logOutput)
	}
}
