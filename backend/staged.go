package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

// Staged returns a Batch for a store without native batching. Operations are
// buffered until Commit, which applies them one by one. If an operation fails,
// the keys already touched are restored to their previous values before the
// error is returned. A failing restore is reported alongside the original
// error; in that case the store may hold part of the batch.
func Staged(b Backend) Batch { return &staged{b: b} }

type stagedOp struct {
	key   []byte
	value []byte
	del   bool
}

// prior is the value a key held before Commit touched it.
type prior struct {
	key     []byte
	value   []byte
	present bool
}

type staged struct {
	b   Backend
	ops []stagedOp
}

func (s *staged) Set(key, value []byte) {
	s.ops = append(s.ops, stagedOp{key: bytes.Clone(key), value: bytes.Clone(value)})
}

func (s *staged) Del(key []byte) { s.ops = append(s.ops, stagedOp{key: bytes.Clone(key), del: true}) }

func (s *staged) Len() int { return len(s.ops) }

func (s *staged) Discard() { s.ops = nil }

func (s *staged) Commit(ctx context.Context) error {
	ops := s.ops
	s.ops = nil

	undo := make([]prior, 0, len(ops))
	seen := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		if _, ok := seen[string(op.key)]; !ok {
			v, present, err := s.b.Get(ctx, op.key)
			if err != nil {
				return s.rollback(ctx, undo, fmt.Errorf("snapshot %q: %w", op.key, err))
			}
			seen[string(op.key)] = struct{}{}
			undo = append(undo, prior{key: op.key, value: v, present: present})
		}

		var err error
		if op.del {
			err = s.b.Del(ctx, op.key)
		} else {
			err = s.b.Set(ctx, op.key, op.value)
		}
		if err != nil {
			return s.rollback(ctx, undo, err)
		}
	}
	return nil
}

// rollback restores undo in reverse order. The restore runs detached from
// ctx cancellation so an expired call can still clean up.
func (s *staged) rollback(ctx context.Context, undo []prior, cause error) error {
	ctx = context.WithoutCancel(ctx)
	errs := []error{cause}
	for i := len(undo) - 1; i >= 0; i-- {
		p := undo[i]
		var err error
		if p.present {
			err = s.b.Set(ctx, p.key, p.value)
		} else {
			err = s.b.Del(ctx, p.key)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %q: %w", p.key, err))
		}
	}
	return errors.Join(errs...)
}
