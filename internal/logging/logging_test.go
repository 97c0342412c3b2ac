package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
		{"xml", log.TextFormatter},
	}
	for _, tt := range tests {
		if got := ParseFormatter(tt.in); got != tt.want {
			t.Errorf("ParseFormatter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidLevelAndFormat(t *testing.T) {
	if !ValidLevel("warning") || ValidLevel("loud") {
		t.Error("ValidLevel misclassified input")
	}
	if !ValidFormat("logfmt") || ValidFormat("yaml") {
		t.Error("ValidFormat misclassified input")
	}
}

func TestFromConfigJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := FromConfig(&buf, "debug", "json", false, false)
	logger.Debug("Saved tasks", "count", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if entry["msg"] != "Saved tasks" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["prefix"] != DefaultPrefix {
		t.Errorf("prefix = %v", entry["prefix"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("count = %v", entry["count"])
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: log.WarnLevel, Formatter: log.TextFormatter})
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestNewNilWriter(t *testing.T) {
	logger := New(nil, DefaultOptions())
	logger.Info("nowhere")
	Discard().Error("nowhere")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.log")
	for i := 0; i < 2; i++ {
		f, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		if _, err := f.WriteString("line\n"); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "line\nline\n" {
		t.Errorf("file was not appended: %q", data)
	}

	if _, err := OpenFile(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func writeLines(t *testing.T, path string, n int) {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString("line ")
		b.WriteString(string(rune('0' + i)))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.log")
	writeLines(t, path, 5)
	ctx := context.Background()

	t.Run("last lines", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Tail(ctx, &buf, path, 2, false); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "line 4\nline 5\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("more than available", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Tail(ctx, &buf, path, 50, false); err != nil {
			t.Fatal(err)
		}
		if got := strings.Count(buf.String(), "\n"); got != 5 {
			t.Errorf("got %d lines", got)
		}
	})

	t.Run("whole file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Tail(ctx, &buf, path, 0, false); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(buf.String(), "line 1\n") {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Tail(ctx, &buf, filepath.Join(t.TempDir(), "nope.log"), 1, false); err == nil {
			t.Error("expected error")
		}
	})
}

type syncBuffer struct {
	ch chan string
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	select {
	case s.ch <- string(p):
	default:
	}
	return len(p), nil
}

func TestTailFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.log")
	writeLines(t, path, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{ch: make(chan string, 16)}
	done := make(chan error, 1)
	go func() { done <- Tail(ctx, out, path, 1, true) }()

	select {
	case got := <-out.ch:
		if got != "line 1\n" {
			t.Fatalf("initial output = %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial output")
	}

	deadline := time.After(5 * time.Second)
	for appended := false; !appended; {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			t.Fatal(err)
		}
		f.WriteString("more\n")
		f.Close()

		select {
		case got := <-out.ch:
			if !strings.Contains(got, "more") {
				t.Fatalf("followed output = %q", got)
			}
			appended = true
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("timed out waiting for followed output")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Tail returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Tail did not stop after cancel")
	}
}
