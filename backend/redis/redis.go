package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/ledgercache/backend"
)

var ErrNilClient = errors.New("redis backend: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	ns          string
	closeClient bool
}

var (
	_ backend.Backend = (*Redis)(nil)
	_ backend.Batcher = (*Redis)(nil)
)

type Config struct {
	Client      goredis.UniversalClient
	Namespace   string // optional key prefix, e.g. "ledger:" to share a redis db
	CloseClient bool   // set true only if this backend exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, ns: cfg.Namespace, closeClient: cfg.CloseClient}, nil
}

func (r *Redis) key(k []byte) string { return r.ns + string(k) }

func (r *Redis) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// Set stores value without expiry; ledger slots never time out.
func (r *Redis) Set(ctx context.Context, key, value []byte) error {
	return r.rdb.Set(ctx, r.key(key), value, 0).Err()
}

func (r *Redis) Del(ctx context.Context, key []byte) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}

// NewBatch returns a batch executed as a MULTI/EXEC transaction.
func (r *Redis) NewBatch() backend.Batch {
	return &batch{r: r}
}

// Close releases the underlying redis client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (r *Redis) Close(context.Context) error {
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

type batch struct {
	r   *Redis
	ops []func(ctx context.Context, p goredis.Pipeliner)
}

func (b *batch) Set(key, value []byte) {
	k, v := b.r.key(key), append([]byte(nil), value...)
	b.ops = append(b.ops, func(ctx context.Context, p goredis.Pipeliner) {
		p.Set(ctx, k, v, 0)
	})
}

func (b *batch) Del(key []byte) {
	k := b.r.key(key)
	b.ops = append(b.ops, func(ctx context.Context, p goredis.Pipeliner) {
		p.Del(ctx, k)
	})
}

func (b *batch) Len() int { return len(b.ops) }

func (b *batch) Discard() { b.ops = nil }

func (b *batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	_, err := b.r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		for _, op := range b.ops {
			op(ctx, p)
		}
		return nil
	})
	b.ops = nil
	return err
}
