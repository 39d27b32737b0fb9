package ctl

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/unkn0wn-root/ledgercache/backend"
	"github.com/unkn0wn-root/ledgercache/backend/leveldb"
	"github.com/unkn0wn-root/ledgercache/backend/pebble"
	"github.com/unkn0wn-root/ledgercache/backend/redis"
)

// open returns the backend named by cfg.Backend. The memory store is owned by
// the App so it survives across commands of one process; it is never closed
// here.
func (a *App) open(ctx context.Context) (backend.Backend, func(), error) {
	var (
		be  backend.Backend
		err error
	)
	switch a.cfg.Backend {
	case "memory":
		return a.mem, func() {}, nil
	case "leveldb":
		be, err = leveldb.Open(leveldb.Config{Path: a.cfg.Path, Sync: true})
	case "pebble":
		be, err = pebble.Open(pebble.Config{Path: a.cfg.Path, Sync: true})
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: a.cfg.RedisAddr})
		if err = rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", a.cfg.RedisAddr, err)
		}
		be, err = redis.New(redis.Config{Client: rdb, Namespace: a.cfg.RedisNamespace, CloseClient: true})
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want memory, leveldb, pebble or redis)", a.cfg.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", a.cfg.Backend, err)
	}
	return be, func() { _ = be.Close(context.Background()) }, nil
}
