package ctxlog

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFromContext_Default(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("Expected a discard logger, got nil")
	}
	logger.Info("dropped")
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, "text", false))

	FromContext(ctx).Info("resolving", "path", "/tmp/vagrant.yml")
	FromContext(ctx).Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "resolving") || !strings.Contains(out, "/tmp/vagrant.yml") {
		t.Errorf("Expected info record, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug record should be filtered without verbose, got %q", out)
	}
}

func TestNew_JSONVerbose(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "json", true).Debug("pass", "pending", 2)

	if !strings.Contains(buf.String(), `"pending":2`) {
		t.Errorf("Expected JSON debug record, got %q", buf.String())
	}
}
