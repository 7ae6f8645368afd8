package engine

import (
	"context"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/componentstore"
	"github.com/specialistvlad/beastgo/internal/ctxlog"
	"github.com/specialistvlad/beastgo/internal/scope"
)

// component returns the render of a named component included from scope id.
//
// Static renders go through the shared store and are cloned before use, so
// callers may attach the nodes freely. They see the caller's variables
// through an isolated layer; reading any of them makes the cached entry
// depend on the first request and is reported. Dynamic renders use a child
// layer of the caller's context and are never stored.
func (st *state) component(ctx context.Context, name string, static bool, vars *binding.Context, id scope.ID) (*componentstore.Rendered, error) {
	if name == "" {
		return nil, directiveErr(tagComponent, "name", "a component name is required")
	}
	if static && st.renderingStatic(name) {
		return nil, directiveErr(tagComponent, "name", "static component %q includes itself", name)
	}
	if st.depth >= st.engine.maxDepth {
		return nil, directiveErr(tagComponent, "name", "component %q exceeds the maximum nesting depth of %d", name, st.engine.maxDepth)
	}

	locale := vars.Locale()
	ext := st.engine.flavor.Extension()
	key := componentstore.Key{Locale: locale.String(), Name: name, Extension: ext}
	childID := id.Component(name, st.nextSite())

	render := func(ctx context.Context) (*componentstore.Rendered, error) {
		ctx, logger := ctxlog.With(ctx, "component", name)
		src, err := st.engine.loader.Load(ctx, name, locale, ext)
		if err != nil {
			return nil, &ResourceError{Component: name, Extension: ext, Err: err}
		}

		var child *binding.Context
		if static {
			child = vars.Isolate()
			st.statics = append(st.statics, name)
			defer func() { st.statics = st.statics[:len(st.statics)-1] }()
		} else {
			child = vars.Child()
		}
		st.depth++
		defer func() { st.depth-- }()
		snapshot := st.bridge.Snapshot()
		defer st.bridge.Restore(snapshot)

		r, err := st.renderSource(ctx, src, child, childID, true)
		if err != nil {
			return nil, err
		}
		if static {
			if names := child.Inherited(); len(names) > 0 {
				logger.Warn("Static component reads request-scoped variables.",
					"locale", key.Locale, "variables", names)
			}
		}
		return r, nil
	}

	r, err := st.engine.store.GetOrRender(ctx, key, static, render)
	if err != nil {
		return nil, err
	}
	if static {
		return r.Clone(), nil
	}
	return r, nil
}
