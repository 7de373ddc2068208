package logger

import (
	"os"
	"testing"
)

func TestWithComponent(t *testing.T) {
	log := Logger()
	entry := log.WithComponent("test")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "test" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	// Ensure environment variables do not override the provided level
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("invalid", "json", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestWithEnv(t *testing.T) {
	os.Setenv("FOO", "bar")
	log := Logger()
	entry := log.WithEnv("FOO")
	if v, ok := entry.Entry.Data["FOO"]; !ok || v != "bar" {
		t.Fatalf("env field not set: %v", entry.Entry.Data)
	}
}

func TestRecordSinkWrite(t *testing.T) {
	RecordSinkWrite("csv_test", 128)
	RecordSinkWrite("csv_test", 64)

	v, ok := sinks.Load("csv_test")
	if !ok {
		t.Fatal("sink stats not recorded")
	}
	ss := v.(*sinkStat)
	if ss.writes != 2 {
		t.Errorf("expected 2 writes, got %d", ss.writes)
	}
	if ss.bytes != 192 {
		t.Errorf("expected 192 bytes, got %d", ss.bytes)
	}
}
