package memory

import (
	"sort"
	"sync"

	"showcase-platform/internal/academy/domain/repository"
)

// table is a mutex guarded map of documents keyed by ID. Values are copied on the way
// in and out so callers never share state with the store.
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	id    func(*T) string
}

func newTable[T any](id func(*T) string) *table[T] {
	return &table[T]{items: make(map[string]T), id: id}
}

func (t *table[T]) create(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := t.id(v)
	if _, ok := t.items[key]; ok {
		return repository.ErrDuplicate
	}
	t.items[key] = *v
	return nil
}

func (t *table[T]) get(id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (t *table[T]) find(match func(*T) bool) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, v := range t.items {
		if match(&v) {
			cp := v
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *table[T]) list(match func(*T) bool, less func(a, b *T) bool) []*T {
	t.mu.RLock()
	out := make([]*T, 0, len(t.items))
	for _, v := range t.items {
		if match == nil || match(&v) {
			cp := v
			out = append(out, &cp)
		}
	}
	t.mu.RUnlock()
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func (t *table[T]) update(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := t.id(v)
	if _, ok := t.items[key]; !ok {
		return repository.ErrNotFound
	}
	t.items[key] = *v
	return nil
}

func (t *table[T]) delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.items, id)
	return nil
}
