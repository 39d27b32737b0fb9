// Package zap adapts a *zap.Logger to ledgercache.Logger.
package zap

import (
	"slices"

	"github.com/unkn0wn-root/ledgercache"
	"go.uber.org/zap"
)

var _ ledgercache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

func New(l *zap.Logger) Logger { return Logger{L: l.WithOptions(zap.AddCallerSkip(1))} }

func (z Logger) Debug(msg string, f ledgercache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f ledgercache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f ledgercache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f ledgercache.Fields) { z.L.Error(msg, fields(f)...) }

// fields emits keys in sorted order so output is stable. Errors become
// zap.NamedError to keep the "errorVerbose" rendering.
func fields(f ledgercache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	ks := make([]string, 0, len(f))
	for k := range f {
		ks = append(ks, k)
	}
	slices.Sort(ks)

	out := make([]zap.Field, 0, len(f))
	for _, k := range ks {
		switch v := f[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		case []byte:
			out = append(out, zap.ByteString(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
