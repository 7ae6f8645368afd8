package engine

import (
	"context"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/ctxlog"
	"github.com/specialistvlad/beastgo/internal/resolver"
	"github.com/specialistvlad/beastgo/internal/scope"
	"golang.org/x/net/html"
)

const (
	tagVar       = Prefix + "var"
	tagIf        = Prefix + "if"
	tagSwitch    = Prefix + "switch"
	tagCase      = Prefix + "case"
	tagDefault   = Prefix + "default"
	tagFor       = Prefix + "for"
	tagRepeat    = Prefix + "repeat"
	tagComponent = Prefix + "component"
	tagRouter    = Prefix + "router"
	tagRoute     = Prefix + "route"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// directive renders a bs: tag into the nodes replacing it.
func (st *state) directive(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	switch n.Data {
	case tagVar:
		return nil, st.assign(ctx, n, vars, id)
	case tagIf:
		return st.ifDirective(ctx, n, vars, id)
	case tagSwitch:
		return st.switchDirective(ctx, n, vars, id)
	case tagFor:
		return st.forDirective(ctx, n, vars, id)
	case tagRepeat:
		return st.repeatDirective(ctx, n, vars, id)
	case tagComponent:
		return st.componentDirective(ctx, n, vars, id)
	case tagRouter:
		return st.routerDirective(ctx, n, vars, id)
	case tagCase, tagDefault:
		return nil, directiveErr(n.Data, "", "must be a direct child of <%s>", tagSwitch)
	case tagRoute:
		return nil, directiveErr(n.Data, "", "must be a direct child of <%s>", tagRouter)
	}
	return nil, directiveErr(n.Data, "", "unknown directive")
}

// assign handles `<bs:var>name = expr; name = expr</bs:var>`.
func (st *state) assign(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) error {
	for _, stmt := range strings.Split(ownText(n), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		name, expr, ok := strings.Cut(stmt, "=")
		name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
		if !ok || expr == "" {
			return directiveErr(tagVar, "", "malformed assignment %q, expected name = expression", stmt)
		}
		if !identPattern.MatchString(name) {
			return directiveErr(tagVar, "", "invalid variable name %q", name)
		}
		v, err := st.value(ctx, expr, vars, id)
		if err != nil {
			return err
		}
		vars.Set(name, v)
		st.bridge.Bind(name, v)
	}
	return nil
}

func (st *state) ifDirective(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	cond, ok := attr(n, "condition")
	if !ok || strings.TrimSpace(cond) == "" {
		return nil, directiveErr(tagIf, "condition", "a condition is required")
	}
	pass, err := st.condition(ctx, cond, vars, id)
	if err != nil || !pass {
		return nil, err
	}
	return st.renderChildren(ctx, n, vars, id)
}

func (st *state) switchDirective(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	expr, ok := attr(n, "var")
	expr = strings.TrimSpace(expr)
	if !ok || expr == "" {
		return nil, directiveErr(tagSwitch, "var", "a var attribute is required")
	}
	subject, err := st.value(ctx, expr, vars, id)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, directiveErr(tagSwitch, "var", "value of %q is null or unresolved", expr)
	}

	var fallback *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case tagCase:
			match, ok := attr(c, "match")
			if !ok {
				return nil, directiveErr(tagCase, "match", "a match attribute is required")
			}
			candidate, err := st.matchValue(ctx, match, vars, id)
			if err != nil {
				return nil, err
			}
			if valuesEqual(subject, candidate) {
				return st.renderChildren(ctx, c, vars, id)
			}
		case tagDefault:
			if fallback == nil {
				fallback = c
			}
		}
	}
	if fallback != nil {
		return st.renderChildren(ctx, fallback, vars, id)
	}
	return nil, nil
}

// matchValue resolves a case's match attribute. A literal or resolvable path
// gives its value, an expression its result; anything else, including a
// path that does not resolve, is compared as the raw string.
func (st *state) matchValue(ctx context.Context, match string, vars *binding.Context, id scope.ID) (any, error) {
	raw := strings.TrimSpace(match)
	if resolver.IsPath(raw) {
		if res := st.resolver.Resolve(ctx, raw, vars, id); res.Found {
			return res.Value, nil
		}
		return raw, nil
	}
	if v, ok := resolver.Literal(raw); ok {
		return v, nil
	}
	if _, err := st.engine.exprs.Compile(raw); err != nil {
		return raw, nil
	}
	v, err := st.evaluate(raw, vars)
	if err != nil || v != nil {
		return v, err
	}
	return raw, nil
}

func (st *state) forDirective(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	item, _ := attr(n, "item")
	item = strings.TrimSpace(item)
	if !identPattern.MatchString(item) {
		return nil, directiveErr(tagFor, "item", "invalid loop variable name %q", item)
	}
	in, ok := attr(n, "in")
	in = strings.TrimSpace(in)
	if !ok || in == "" {
		return nil, directiveErr(tagFor, "in", "a collection is required")
	}

	coll, err := st.value(ctx, in, vars, id)
	if err != nil {
		return nil, err
	}
	if coll == nil {
		ctxlog.FromContext(ctx).Debug("Loop collection is empty or unresolved.", "expression", in)
		return nil, nil
	}
	rv := reflect.ValueOf(coll)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, directiveErr(tagFor, "in", "%q is %T, not a sequence", in, coll)
	}

	site := st.nextSite()
	indexName := item + "_index"
	var out []*html.Node
	for i := 0; i < rv.Len(); i++ {
		iteration := vars.Child()
		iteration.Set(item, rv.Index(i).Interface())
		iteration.Set(indexName, i)

		nodes, err := st.isolatedChildren(ctx, n, iteration, id.Iteration(scope.KindFor, in, site, i))
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func (st *state) repeatDirective(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	times, ok := attr(n, "times")
	times = strings.TrimSpace(times)
	if !ok || times == "" {
		return nil, directiveErr(tagRepeat, "times", "a repeat count is required")
	}
	count, err := st.repeatCount(ctx, times, vars, id)
	if err != nil {
		return nil, err
	}

	site := st.nextSite()
	var out []*html.Node
	for i := 0; i < count; i++ {
		nodes, err := st.isolatedChildren(ctx, n, vars.Child(), id.Iteration(scope.KindRepeat, times, site, i))
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

// repeatCount parses times as an integer literal, falling back to variable
// resolution and then to expression evaluation.
func (st *state) repeatCount(ctx context.Context, times string, vars *binding.Context, id scope.ID) (int, error) {
	if n, err := strconv.Atoi(times); err == nil {
		if n < 0 {
			return 0, directiveErr(tagRepeat, "times", "negative repeat count %d", n)
		}
		return n, nil
	}

	var v any
	if resolver.IsPath(times) {
		res := st.resolver.Resolve(ctx, times, vars, id)
		if !res.Found {
			return 0, directiveErr(tagRepeat, "times", "%q is neither an integer nor a resolvable variable", times)
		}
		v = res.Value
	} else {
		var err error
		if v, err = st.value(ctx, times, vars, id); err != nil {
			return 0, err
		}
	}

	n, ok := integer(v)
	if !ok {
		return 0, directiveErr(tagRepeat, "times", "%q resolved to %T, not an integer", times, v)
	}
	if n < 0 {
		return 0, directiveErr(tagRepeat, "times", "negative repeat count %d", n)
	}
	return n, nil
}

// isolatedChildren renders the children of n and then drops any live
// bindings the body created, so bs:var inside a loop body stays local.
func (st *state) isolatedChildren(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	snapshot := st.bridge.Snapshot()
	defer st.bridge.Restore(snapshot)
	return st.renderChildren(ctx, n, vars, id)
}

func (st *state) componentDirective(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	name, ok := attr(n, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, directiveErr(tagComponent, "name", "a component name is required")
	}
	if strings.Contains(name, "{{") {
		var err error
		if name, err = st.interpolate(ctx, name, vars, id); err != nil {
			return nil, err
		}
	}
	r, err := st.component(ctx, strings.TrimSpace(name), isStatic(n), vars, id)
	if err != nil {
		return nil, err
	}
	return r.Nodes, nil
}

func (st *state) routerDirective(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	current, _ := vars.Get(st.engine.routeVar)
	path := strings.TrimSpace(stringify(current))

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != tagRoute {
			continue
		}
		routePath, ok := attr(c, "path")
		if !ok {
			return nil, directiveErr(tagRoute, "path", "a route path is required")
		}
		name, ok := attr(c, "component")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, directiveErr(tagRoute, "component", "a route component is required")
		}
		if !strings.EqualFold(strings.TrimSpace(routePath), path) {
			continue
		}
		r, err := st.component(ctx, strings.TrimSpace(name), isStatic(c), vars, id)
		if err != nil {
			return nil, err
		}
		return r.Nodes, nil
	}

	ctxlog.FromContext(ctx).Debug("No route matched.", "path", path)
	return nil, nil
}
