package propstore

import (
	"errors"
	"fmt"
	"iter"

	iter_util "github.com/TheBitDrifter/util/iter"
)

// Registry owns named stores and decides when they are cleared. It is the
// scene-level entry point: stores are looked up by name or selected by the
// columns they carry.
type Registry struct {
	schema *columnSchema
	stores []namedStore
	byName map[string]int
}

type namedStore struct {
	name  string
	store Store
}

func newRegistry() *Registry {
	return &Registry{
		schema: newColumnSchema(MaxSchemaColumns),
		byName: make(map[string]int),
	}
}

func (r *Registry) Register(name string, s Store) error {
	if _, exists := r.byName[name]; exists {
		return StoreExistsError{Name: name}
	}
	r.byName[name] = len(r.stores)
	r.stores = append(r.stores, namedStore{name: name, store: s})
	return nil
}

func (r *Registry) Store(name string) (Store, error) {
	idx, ok := r.byName[name]
	if !ok {
		return nil, StoreNotFoundError{Name: name}
	}
	return r.stores[idx].store, nil
}

// Remove clears the named store and drops it from the registry. A store
// that refuses to clear stays registered.
func (r *Registry) Remove(name string) error {
	idx, ok := r.byName[name]
	if !ok {
		return StoreNotFoundError{Name: name}
	}
	if err := r.stores[idx].store.Clear(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", name, err)
	}
	delete(r.byName, name)
	r.stores = append(r.stores[:idx], r.stores[idx+1:]...)
	r.reindex(idx)
	return nil
}

func (r *Registry) reindex(from int) {
	for i := from; i < len(r.stores); i++ {
		r.byName[r.stores[i].name] = i
	}
}

func (r *Registry) Len() int {
	return len(r.stores)
}

func (r *Registry) Schema() Schema {
	return r.schema
}

// All iterates stores in registration order.
func (r *Registry) All() iter.Seq2[string, Store] {
	return func(yield func(string, Store) bool) {
		for _, ns := range r.stores {
			if !yield(ns.name, ns.store) {
				return
			}
		}
	}
}

func (r *Registry) storeNames() iter.Seq[string] {
	return func(yield func(string) bool) {
		for name := range r.All() {
			if !yield(name) {
				return
			}
		}
	}
}

func (r *Registry) Names() []string {
	return iter_util.Collect(r.storeNames())
}

// Query iterates the stores matching node.
func (r *Registry) Query(node QueryNode) iter.Seq2[string, Store] {
	return func(yield func(string, Store) bool) {
		for name, s := range r.All() {
			if !node.Evaluate(s, r.schema) {
				continue
			}
			if !yield(name, s) {
				return
			}
		}
	}
}

// GarbageCollection compacts every store. Locked stores get the pass
// enqueued for when they are unlocked.
func (r *Registry) GarbageCollection() error {
	var errs []error
	for name, s := range r.All() {
		var err error
		if s.Locked() {
			err = s.EnqueueGarbageCollection()
		} else {
			err = s.GarbageCollection()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to collect garbage in %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Clear clears and drops every store. Stores that refuse to clear, such as
// locked ones, stay registered in their original order.
func (r *Registry) Clear() error {
	var errs []error
	kept := r.stores[:0]
	for _, ns := range r.stores {
		if err := ns.store.Clear(); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear %s: %w", ns.name, err))
			kept = append(kept, ns)
		}
	}
	clear(r.stores[len(kept):])
	r.stores = kept
	clear(r.byName)
	r.reindex(0)
	return errors.Join(errs...)
}
