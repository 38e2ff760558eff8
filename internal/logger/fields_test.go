package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  source  ", Value: "  postgres  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "source" || fields[0].String != "postgres" {
		t.Fatalf("unexpected source field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestRunFields(t *testing.T) {
	fields := RunFields("run-1", "  headhunter ", "")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldRunID || fields[0].String != "run-1" {
		t.Fatalf("unexpected run id field: %+v", fields[0])
	}

	if fields[1].Key != FieldSource || fields[1].String != "headhunter" {
		t.Fatalf("unexpected source field: %+v", fields[1])
	}
}

func TestWithRunFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithRunFields(zap.New(core), "run-2", "postgres", "dev@example.com").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldRunID] != "run-2" || ctx[FieldSource] != "postgres" || ctx[FieldUser] != "dev@example.com" {
		t.Fatalf("unexpected context: %v", ctx)
	}

	// Ensure logging with the fallback logger does not panic.
	WithRunFields(nil, "run-3", "", "").Info("another log")
}

func TestNewConfig(t *testing.T) {
	cfg := newConfig(true, true)
	if cfg.Encoding != "json" {
		t.Fatalf("expected json encoding, got %s", cfg.Encoding)
	}
	if cfg.Level.Level() != zapcore.DebugLevel {
		t.Fatalf("expected debug level, got %s", cfg.Level.Level())
	}

	cfg = newConfig(false, false)
	if cfg.Encoding != "console" || cfg.Level.Level() != zapcore.InfoLevel {
		t.Fatalf("unexpected default config: %s %s", cfg.Encoding, cfg.Level.Level())
	}

	if _, err := New(false, false); err != nil {
		t.Fatalf("building logger: %v", err)
	}
}
