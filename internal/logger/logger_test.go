package logger

import (
	"testing"

	"github.com/alpn-software/portfolio-client/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestObjHelpersLogStructuredField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := S
	S = zap.New(core).Sugar()
	defer func() { S = prev }()

	var log Logger = ZapLogger{}
	log.InfoObj("contact submitted", "submission", map[string]any{"status_code": 201})
	log.DebugObj("debug", "k", 1)
	log.WarnObj("warn", "k", 2)
	log.ErrorObj("error", "k", 3)

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	sub, ok := fields["submission"].(map[string]any)
	if !ok || sub["status_code"] != 201 {
		t.Fatalf("unexpected fields %#v", fields)
	}
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	prev := S
	S = nil
	defer func() { S = prev }()

	InfoObj("ignored", "k", "v")
	if err := Close(); err != nil {
		t.Fatalf("Close without init: %v", err)
	}
	(&NopLogger{}).ErrorObj("ignored", "k", "v")
}

func TestInitHonoursLevel(t *testing.T) {
	prev := S
	defer func() { S = prev }()

	if _, err := Init(&config.Config{LogLevel: "error"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if S.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be disabled at error level")
	}
	if !S.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error should be enabled")
	}
}
