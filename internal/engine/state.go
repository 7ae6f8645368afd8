package engine

import (
	"context"
	"slices"

	"github.com/specialistvlad/beastgo/internal/bsexpr"
	"github.com/specialistvlad/beastgo/internal/ctxlog"
	"github.com/specialistvlad/beastgo/internal/memo"
	"github.com/specialistvlad/beastgo/internal/resolver"
)

// state holds everything private to one top-level render: the resolved-value
// cache, the resolver reading through it and the bridge with its live
// bindings. States are pooled and reset between renders; a state is never
// used by two goroutines at once.
type state struct {
	engine   *Engine
	memo     *memo.Cache
	resolver *resolver.Resolver
	bridge   *bsexpr.Bridge

	sites   int      // directive activations so far
	depth   int      // current component nesting
	statics []string // static components being rendered, outermost first
}

func (e *Engine) newState() *state {
	cache := memo.New()
	return &state{
		engine:   e,
		memo:     cache,
		resolver: resolver.New(cache, e.props),
		bridge:   bsexpr.NewBridge(e.exprs, e.props),
	}
}

func (e *Engine) acquire() *state {
	return e.states.Get().(*state)
}

func (e *Engine) release(st *state) {
	st.memo.Reset()
	st.bridge.Reset()
	st.sites = 0
	st.depth = 0
	st.statics = st.statics[:0]
	e.states.Put(st)
}

// nextSite numbers a directive activation. Scope segments carry the site so
// two activations never share cache entries.
func (st *state) nextSite() int {
	st.sites++
	return st.sites
}

func (st *state) renderingStatic(name string) bool {
	return slices.Contains(st.statics, name)
}

func (st *state) logFinished(ctx context.Context) {
	hits, misses := st.memo.Stats()
	ctxlog.FromContext(ctx).Debug("Render finished.",
		"flavor", st.engine.flavor,
		"sites", st.sites,
		"memo_entries", st.memo.Len(),
		"memo_hits", hits,
		"memo_misses", misses,
	)
}
