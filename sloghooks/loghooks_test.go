package sloghooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newJSON(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ln := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if ln == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(ln), &m); err != nil {
			t.Fatalf("bad line %q: %v", ln, err)
		}
		out = append(out, m)
	}
	return out
}

func TestRedactsKeys(t *testing.T) {
	var buf bytes.Buffer
	h := New(newJSON(&buf), Options{})
	h.BackendRemove("acct$alice")
	h.DecodeFailed("acct$bob", errors.New("bad"))

	got := lines(t, &buf)
	if len(got) != 2 {
		t.Fatalf("got %d lines", len(got))
	}
	for _, m := range got {
		k, _ := m["key"].(string)
		if len(k) != 16 || strings.Contains(k, "alice") || strings.Contains(k, "bob") {
			t.Fatalf("key not redacted: %v", m)
		}
	}
	if got[1]["level"] != "ERROR" || got[1]["err"] != "bad" {
		t.Fatalf("decode line: %v", got[1])
	}
}

func TestSamplingAndCustomRedact(t *testing.T) {
	var buf bytes.Buffer
	h := New(newJSON(&buf), Options{
		LoadEvery: 3,
		Redact:    func(k string) string { return "<" + k + ">" },
	})
	for i := 0; i < 6; i++ {
		h.BackendLoad("k", true)
	}
	got := lines(t, &buf)
	if len(got) != 2 {
		t.Fatalf("sampled %d loads, want 2", len(got))
	}
	if got[0]["key"] != "<k>" {
		t.Fatalf("redact: %v", got[0])
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	h := New(nil, Options{})
	h.Flushed(1, true)
	h.CallAborted(errors.New("x"))
}
