package ledgercache

import "maps"

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a leveled logger. Adapters for zap, logrus and log/slog live
// under log/. A nil Logger in Options disables logging.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// WithFields returns a Logger that adds base to every entry. Per-call fields
// win on conflict.
func WithFields(l Logger, base Fields) Logger {
	if len(base) == 0 {
		return l
	}
	if _, ok := l.(NopLogger); ok {
		return l
	}
	return fieldLogger{l: l, base: base}
}

type fieldLogger struct {
	l    Logger
	base Fields
}

func (f fieldLogger) merge(extra Fields) Fields {
	out := make(Fields, len(f.base)+len(extra))
	maps.Copy(out, f.base)
	maps.Copy(out, extra)
	return out
}

func (f fieldLogger) Debug(msg string, x Fields) { f.l.Debug(msg, f.merge(x)) }
func (f fieldLogger) Info(msg string, x Fields)  { f.l.Info(msg, f.merge(x)) }
func (f fieldLogger) Warn(msg string, x Fields)  { f.l.Warn(msg, f.merge(x)) }
func (f fieldLogger) Error(msg string, x Fields) { f.l.Error(msg, f.merge(x)) }
