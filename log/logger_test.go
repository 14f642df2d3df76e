package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	type spec struct {
		in     string
		exp    Level
		expErr bool
	}
	specs := []spec{
		{"debug", Debug, false},
		{"INFO", Info, false},
		{"", Notice, false},
		{"warn", Warning, false},
		{" error ", Error, false},
		{"chatty", Notice, true},
	}

	for index, s := range specs {
		lvl, err := ParseLevel(s.in)
		if s.expErr != (err != nil) {
			t.Fatalf("[spec %d] expected error to be %t; got %v", index, s.expErr, err)
		}
		if lvl != s.exp {
			t.Fatalf("[spec %d] expected level %d; got %d", index, s.exp, lvl)
		}
	}
}

func TestSinkAndLevel(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer func() {
		SetLevel(Notice)
	}()

	logger := New("test")

	SetLevel(Warning)
	logger.Notice("hidden")
	logger.Warning("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("expected only the warning to be logged; got %q", out)
	}

	buf.Reset()
	SetLevel(Debug)
	logger.Debugf("value %d", 42)
	if out := buf.String(); !strings.Contains(out, "value 42") || !strings.Contains(out, "[test]") {
		t.Fatalf("expected debug message tagged with module name; got %q", out)
	}
}
