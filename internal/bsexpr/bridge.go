package bsexpr

import (
	"fmt"
	"maps"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/beastgo/internal/property"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Env is the variable environment an expression is evaluated against.
// *binding.Context implements it.
type Env interface {
	Get(name string) (any, bool)
}

// Bridge evaluates expressions for one render pass. It is not safe for
// concurrent use; each render (or worker) owns its own Bridge.
type Bridge struct {
	cache     *Cache
	conv      *Converter
	functions map[string]function.Function
	binds     map[string]any
}

// NewBridge creates a bridge compiling through cache.
func NewBridge(cache *Cache, props *property.Table) *Bridge {
	return &Bridge{
		cache:     cache,
		conv:      NewConverter(props),
		functions: cache.functions,
		binds:     make(map[string]any),
	}
}

// Bind sets a live binding. Live bindings are consulted for names the Env
// passed to Evaluate does not define.
func (b *Bridge) Bind(name string, value any) {
	b.binds[name] = value
}

// Bound returns a live binding.
func (b *Bridge) Bound(name string) (any, bool) {
	v, ok := b.binds[name]
	return v, ok
}

// Evaluate compiles expr (through the shared cache) and evaluates it. Every
// variable the expression references is reflected from env, falling back to
// the live bindings; names found in neither evaluate as null.
func (b *Bridge) Evaluate(expr string, env Env) (any, error) {
	compiled, err := b.cache.Compile(expr)
	if err != nil {
		return nil, err
	}

	vars := make(map[string]cty.Value, len(compiled.Roots))
	for _, name := range compiled.Roots {
		native, ok := env.Get(name)
		if !ok {
			native, ok = b.binds[name]
		}
		if !ok {
			vars[name] = cty.NullVal(cty.DynamicPseudoType)
			continue
		}
		val, err := b.conv.ToCtyValue(native)
		if err != nil {
			return nil, fmt.Errorf("variable '%s': %w", name, err)
		}
		vars[name] = val
	}

	result, diags := compiled.Expr.Value(&hcl.EvalContext{
		Variables: vars,
		Functions: b.functions,
	})
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluate: %w", diags)
	}
	return b.conv.ToNative(result)
}

// Snapshot returns a copy of the live bindings.
func (b *Bridge) Snapshot() map[string]any {
	return maps.Clone(b.binds)
}

// Restore replaces the live bindings with a snapshot taken earlier.
func (b *Bridge) Restore(snapshot map[string]any) {
	clear(b.binds)
	maps.Copy(b.binds, snapshot)
}

// Reset drops all live bindings so the bridge can serve another render.
func (b *Bridge) Reset() {
	clear(b.binds)
}
