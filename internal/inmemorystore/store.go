// Package inmemorystore provides an in-process, thread-safe implementation of
// the componentstore.Store interface.
//
// # Concurrency Model
//
// Entries are kept in a sync.Map: the key space (components × locales) is
// small and stable while reads vastly outnumber writes, which is the access
// pattern sync.Map is optimized for.
//
// Concurrent misses on the same static key are collapsed with singleflight so
// a component is rendered once and every waiter receives the same entry.
// A static render that itself includes further static components does not
// wait on other flights; it renders the nested miss directly and keeps the
// first stored result. Waiting only at the outermost level means two
// goroutines rendering mutually including components can never block on
// each other.
package inmemorystore

import (
	"context"
	"sync"

	"github.com/specialistvlad/beastgo/internal/componentstore"
	"github.com/specialistvlad/beastgo/internal/ctxlog"
	"golang.org/x/sync/singleflight"
)

type inFlightKey struct{}

// Store is an in-memory implementation of componentstore.Store.
//
//   - entries: maps componentstore.Key to *componentstore.Rendered
//   - flights: collapses concurrent first renders of the same key
type Store struct {
	entries sync.Map
	flights singleflight.Group
}

// New creates a new, empty in-memory component store.
func New() *Store {
	return &Store{}
}

var _ componentstore.Store = (*Store)(nil)

// GetOrRender implements componentstore.Store.
func (s *Store) GetOrRender(ctx context.Context, key componentstore.Key, static bool, render componentstore.RenderFunc) (*componentstore.Rendered, error) {
	if !static {
		return render(ctx)
	}
	if r, ok := s.Get(ctx, key); ok {
		return r, nil
	}

	logger := ctxlog.FromContext(ctx)
	if ctx.Value(inFlightKey{}) != nil {
		logger.Debug("Rendering nested static component.", "component", key.Name, "locale", key.Locale)
		return s.renderAndStore(ctx, key, render)
	}

	v, err, shared := s.flights.Do(key.String(), func() (any, error) {
		if r, ok := s.Get(ctx, key); ok {
			return r, nil
		}
		logger.Debug("Rendering static component.", "component", key.Name, "locale", key.Locale)
		return s.renderAndStore(context.WithValue(ctx, inFlightKey{}, true), key, render)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Shared static component render.", "component", key.Name)
	}
	return v.(*componentstore.Rendered), nil
}

func (s *Store) renderAndStore(ctx context.Context, key componentstore.Key, render componentstore.RenderFunc) (*componentstore.Rendered, error) {
	r, err := render(ctx)
	if err != nil {
		return nil, err
	}
	actual, _ := s.entries.LoadOrStore(key, r)
	return actual.(*componentstore.Rendered), nil
}

// Get implements componentstore.Store.
func (s *Store) Get(_ context.Context, key componentstore.Key) (*componentstore.Rendered, bool) {
	v, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*componentstore.Rendered), true
}

// Clear implements componentstore.Store.
func (s *Store) Clear(ctx context.Context) {
	s.entries.Clear()
	ctxlog.FromContext(ctx).Debug("Component store cleared.")
}

// Len implements componentstore.Store.
func (s *Store) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
