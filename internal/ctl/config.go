package ctl

import (
	"fmt"
	"io"
	stdslog "log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/ledgercache"
	ledgerlogrus "github.com/unkn0wn-root/ledgercache/log/logrus"
	ledgerslog "github.com/unkn0wn-root/ledgercache/log/slog"
	ledgerzap "github.com/unkn0wn-root/ledgercache/log/zap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds ledgerctl configuration. Flags override the environment.
type Config struct {
	Backend        string `env:"LEDGER_BACKEND"         envDefault:"leveldb"`
	Path           string `env:"LEDGER_PATH"            envDefault:"ledger.db"`
	RedisAddr      string `env:"LEDGER_REDIS_ADDR"      envDefault:"localhost:6379"`
	RedisNamespace string `env:"LEDGER_REDIS_NAMESPACE" envDefault:"ledger:"`
	LogLevel       string `env:"LEDGER_LOG_LEVEL"       envDefault:"warn"`
	LogFormat      string `env:"LEDGER_LOG_FORMAT"      envDefault:"zap"`
	Trace          bool   `env:"LEDGER_TRACE"`
}

// ParseEnv loads Config from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// newLogger builds the session logger for cfg.LogFormat, writing to w.
func newLogger(cfg Config, w io.Writer) (ledgercache.Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}

	switch cfg.LogFormat {
	case "zap", "":
		enc := zap.NewDevelopmentEncoderConfig()
		enc.TimeKey = ""
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
		return ledgerzap.New(zap.New(core)), nil
	case "logrus":
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(logrusLevel(lvl))
		return ledgerlogrus.New(l), nil
	case "slog":
		h := stdslog.NewTextHandler(w, &stdslog.HandlerOptions{Level: slogLevel(lvl)})
		return ledgerslog.Logger{L: stdslog.New(h)}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want zap, logrus or slog)", cfg.LogFormat)
	}
}

func logrusLevel(l zapcore.Level) logrus.Level {
	switch {
	case l <= zapcore.DebugLevel:
		return logrus.DebugLevel
	case l == zapcore.InfoLevel:
		return logrus.InfoLevel
	case l == zapcore.WarnLevel:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func slogLevel(l zapcore.Level) stdslog.Level {
	switch {
	case l <= zapcore.DebugLevel:
		return stdslog.LevelDebug
	case l == zapcore.InfoLevel:
		return stdslog.LevelInfo
	case l == zapcore.WarnLevel:
		return stdslog.LevelWarn
	default:
		return stdslog.LevelError
	}
}
