// Package slog adapts a *slog.Logger to ledgercache.Logger.
package slog

import (
	"context"
	stdslog "log/slog"
	"slices"

	"github.com/unkn0wn-root/ledgercache"
)

var _ ledgercache.Logger = Logger{}

type Logger struct {
	L *stdslog.Logger
	// Ctx is passed to the handler; nil means context.Background().
	Ctx context.Context
}

func (s Logger) Debug(msg string, f ledgercache.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f ledgercache.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f ledgercache.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f ledgercache.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(lvl stdslog.Level, msg string, f ledgercache.Fields) {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.L.Enabled(ctx, lvl) {
		return
	}
	s.L.LogAttrs(ctx, lvl, msg, attrs(f)...)
}

func attrs(f ledgercache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		out = append(out, stdslog.Any(k, v))
	}
	slices.SortFunc(out, func(a, b stdslog.Attr) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	return out
}
