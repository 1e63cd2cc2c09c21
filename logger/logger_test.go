package logger

import (
	"testing"
)

func TestNew_DefaultsToInfo(t *testing.T) {
	l := New(Config{})

	if l.Z().GetLevel().String() != "info" {
		t.Errorf("level = %s, want info", l.Z().GetLevel())
	}
}

func TestNew_ParsesLevel(t *testing.T) {
	l := New(Config{Level: "debug"})

	if l.Z().GetLevel().String() != "debug" {
		t.Errorf("level = %s, want debug", l.Z().GetLevel())
	}
}

func TestNew_BadLevelFallsBack(t *testing.T) {
	l := New(Config{Level: "verbose"})

	if l.Z().GetLevel().String() != "info" {
		t.Errorf("level = %s, want info fallback", l.Z().GetLevel())
	}
}

func TestFields(t *testing.T) {
	m := Fields("key", "k1", "count", 3)

	if m["key"] != "k1" || m["count"] != 3 {
		t.Errorf("Fields = %v", m)
	}
}

func TestFields_IgnoresDanglingValue(t *testing.T) {
	m := Fields("key", "v", "dangling")

	if len(m) != 1 {
		t.Errorf("len = %d, want 1", len(m))
	}
}

func TestFields_IgnoresNonStringKey(t *testing.T) {
	m := Fields(42, "v", "ok", 1)

	if _, found := m["ok"]; !found || len(m) != 1 {
		t.Errorf("Fields = %v", m)
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := Nop().WithComponent("test")
	l.Debug("msg")
	l.Info("msg", Fields("k", "v"))
	l.ErrorErr("msg", nil)
}
