package logrus

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/unkn0wn-root/ledgercache"
)

func TestLoggerFields(t *testing.T) {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.DebugLevel)
	hook := test.NewLocal(base)
	l := New(base)

	boom := errors.New("boom")
	l.Warn("call aborted", ledgercache.Fields{"err": boom, "key": []byte("k$1")})
	l.Debug("committed", nil)

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.Level != logrus.WarnLevel || e.Message != "call aborted" {
		t.Fatalf("entry: %v %q", e.Level, e.Message)
	}
	if e.Data[logrus.ErrorKey] != boom || e.Data["key"] != "k$1" {
		t.Fatalf("data: %v", e.Data)
	}
	if entries[1].Level != logrus.DebugLevel || len(entries[1].Data) != 0 {
		t.Fatalf("entry 1: %v %v", entries[1].Level, entries[1].Data)
	}
}
