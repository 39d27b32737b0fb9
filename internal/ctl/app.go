// Package ctl implements ledgerctl, a small operator tool that reads and
// writes ledger cells, vectors and iterable mappings of string values.
package ctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdslog "log/slog"
	"os"
	"sync"

	"github.com/unkn0wn-root/ledgercache"
	"github.com/unkn0wn-root/ledgercache/backend/memory"
	asynchook "github.com/unkn0wn-root/ledgercache/hooks/async"
	"github.com/unkn0wn-root/ledgercache/sloghooks"
	"github.com/urfave/cli/v2"
)

var errNotFound = errors.New("not found")

// App carries configuration and process-wide state between commands.
type App struct {
	cfg    Config
	out    io.Writer
	errOut io.Writer
	mem    *memory.Store
	log    ledgercache.Logger
}

func New(cfg Config, out, errOut io.Writer) *App {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	// trace hooks write from their own goroutine
	return &App{cfg: cfg, out: out, errOut: &lockedWriter{w: errOut}, mem: memory.New()}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// Run parses args (args[0] is the program name) and executes the command.
func (a *App) Run(ctx context.Context, args []string) error {
	return a.cli().RunContext(ctx, args)
}

func (a *App) cli() *cli.App {
	return &cli.App{
		Name:      "ledgerctl",
		Usage:     "inspect and edit ledger storage",
		Writer:    a.out,
		ErrWriter: a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "backend", Value: a.cfg.Backend, Usage: "memory, leveldb, pebble or redis"},
			&cli.StringFlag{Name: "path", Value: a.cfg.Path, Usage: "database directory for leveldb/pebble"},
			&cli.StringFlag{Name: "redis-addr", Value: a.cfg.RedisAddr},
			&cli.StringFlag{Name: "log-level", Value: a.cfg.LogLevel},
			&cli.StringFlag{Name: "log-format", Value: a.cfg.LogFormat, Usage: "zap, logrus or slog"},
			&cli.BoolFlag{Name: "trace", Value: a.cfg.Trace, Usage: "log every backend round trip"},
		},
		Before: func(c *cli.Context) error {
			a.cfg.Backend = c.String("backend")
			a.cfg.Path = c.String("path")
			a.cfg.RedisAddr = c.String("redis-addr")
			a.cfg.LogLevel = c.String("log-level")
			a.cfg.LogFormat = c.String("log-format")
			a.cfg.Trace = c.Bool("trace")
			l, err := newLogger(a.cfg, a.errOut)
			if err != nil {
				return err
			}
			a.log = l
			return nil
		},
		Commands: []*cli.Command{a.cellCommand(), a.vecCommand(), a.mapCommand()},
	}
}

// call binds S at key and runs fn in one session. Mutating calls commit on
// success; view calls never write.
func call[S ledgercache.Flusher](c *cli.Context, a *App, view bool, bind ledgercache.BindFunc[S], fn func(S) error) error {
	key := c.Args().First()
	if key == "" {
		return errors.New("missing storage key")
	}
	be, closeFn, err := a.open(c.Context)
	if err != nil {
		return err
	}
	defer closeFn()

	opts := ledgercache.Options{Logger: a.log, View: view}
	if a.cfg.Trace {
		raw := sloghooks.New(stdslog.New(stdslog.NewTextHandler(a.errOut, &stdslog.HandlerOptions{Level: stdslog.LevelDebug})),
			sloghooks.Options{Redact: func(k string) string { return fmt.Sprintf("%q", k) }})
		h := asynchook.New(raw, 1, 1024)
		defer h.Close()
		opts.Hooks = h
	}

	sess, err := ledgercache.NewSession(c.Context, be, opts)
	if err != nil {
		return err
	}
	if err := ledgercache.Call(sess, []byte(key), bind, fn); err != nil {
		return err
	}
	st := sess.Stats()
	a.log.Info("done", ledgercache.Fields{
		"cmd": c.Command.FullName(), "loads": st.Loads, "stores": st.Stores, "removes": st.Removes,
	})
	return nil
}

// arg returns positional argument i (0 is the storage key) or fails.
func arg(c *cli.Context, i int, name string) (string, error) {
	if c.NArg() <= i {
		return "", fmt.Errorf("missing %s", name)
	}
	return c.Args().Get(i), nil
}
