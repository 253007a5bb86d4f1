package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel, log.TextFormatter)
	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel, log.JSONFormatter).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("want JSON output, got %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel, log.TextFormatter)).done("Rendered")
	if !strings.Contains(buf.String(), "Rendered (") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
