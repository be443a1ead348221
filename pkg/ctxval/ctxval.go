// Package ctxval is a mutable, request-scoped value bag. Handlers deep in the call
// chain record values that outer middleware reads after the handler returns.
package ctxval

import (
	"context"
	"sync"
)

// Key is a typed handle to a value in the bag.
type Key[V any] struct {
	name string
}

func NewKey[V any](name string) Key[V] {
	return Key[V]{name: name}
}

func (k Key[V]) String() string {
	return k.name
}

func Wrap(ctx context.Context) context.Context {
	if _, ok := getBag(ctx); ok {
		// already wrapped
		return ctx
	}
	return context.WithValue(ctx, defKey, &bag{values: map[string]any{}})
}

func Set[V any](ctx context.Context, k Key[V], v V) {
	b, ok := getBag(ctx)
	if !ok {
		return
	}
	b.m.Lock()
	defer b.m.Unlock()
	b.values[k.name] = v
}

func Get[V any](ctx context.Context, k Key[V]) (V, bool) {
	b, ok := getBag(ctx)
	if !ok {
		return *new(V), false
	}
	b.m.RLock()
	defer b.m.RUnlock()
	v, ok := b.values[k.name].(V)
	return v, ok
}

// Snapshot copies every value currently in the bag.
func Snapshot(ctx context.Context) map[string]any {
	b, ok := getBag(ctx)
	if !ok {
		return nil
	}
	b.m.RLock()
	defer b.m.RUnlock()
	out := make(map[string]any, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

type ctxKey struct{}

var defKey = ctxKey{}

type bag struct {
	m      sync.RWMutex
	values map[string]any
}

func getBag(ctx context.Context) (*bag, bool) {
	b, ok := ctx.Value(defKey).(*bag)
	return b, ok
}
