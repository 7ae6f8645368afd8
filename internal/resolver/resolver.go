// Package resolver resolves dotted variable paths against a binding.Context,
// memoizing each resolution per scope in a memo.Cache.
package resolver

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/ctxlog"
	"github.com/specialistvlad/beastgo/internal/memo"
	"github.com/specialistvlad/beastgo/internal/property"
	"github.com/specialistvlad/beastgo/internal/scope"
)

var (
	pathPattern  = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z0-9_$]+)*$`)
	intPattern   = regexp.MustCompile(`^[-+]?[0-9]+$`)
	floatPattern = regexp.MustCompile(`^[-+]?([0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)([eE][-+]?[0-9]+)?$`)
)

// IsPath reports whether expr is a bare dotted variable path such as
// `user.address.city`. Literal keywords are not paths.
func IsPath(expr string) bool {
	if expr == "true" || expr == "false" || expr == "null" {
		return false
	}
	return pathPattern.MatchString(expr)
}

// Literal parses the literal tokens true, false and syntactically numeric
// tokens. Integers become int (int64 range), other numbers float64.
func Literal(expr string) (any, bool) {
	switch expr {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	if intPattern.MatchString(expr) {
		if i, err := strconv.ParseInt(expr, 10, 64); err == nil {
			return int(i), true
		}
	}
	if floatPattern.MatchString(expr) {
		if f, err := strconv.ParseFloat(expr, 64); err == nil {
			return f, true
		}
	}
	return nil, false
}

// Resolver performs structural lookups for one render pass.
type Resolver struct {
	cache *memo.Cache
	props *property.Table
}

// New creates a resolver memoizing into cache and reading nested properties
// through props.
func New(cache *memo.Cache, props *property.Table) *Resolver {
	return &Resolver{cache: cache, props: props}
}

// Resolve returns the value of expr in vars. Literals short-circuit without
// touching the cache or the Context. Every other expression is memoized under
// (id, expr): a later call with the same pair returns the stored resolution
// even if vars changed in between.
//
// Found=false means the expression is not a path or one of its segments could
// not be read; callers fall through to expression evaluation or treat it as empty.
func (r *Resolver) Resolve(ctx context.Context, expr string, vars *binding.Context, id scope.ID) memo.Resolution {
	expr = strings.TrimSpace(expr)
	if v, ok := Literal(expr); ok {
		return memo.Resolution{Value: v, Found: true}
	}
	if res, ok := r.cache.Lookup(id.Key(), expr); ok {
		return res
	}
	res := r.lookup(ctx, expr, vars)
	r.cache.Store(id.Key(), expr, res)
	return res
}

func (r *Resolver) lookup(ctx context.Context, expr string, vars *binding.Context) memo.Resolution {
	if !IsPath(expr) {
		return memo.Resolution{}
	}
	logger := ctxlog.FromContext(ctx)

	parts := strings.Split(expr, ".")
	value, ok := vars.Get(parts[0])
	if !ok {
		logger.Debug("Variable not found in context.", "expression", expr, "segment", parts[0])
		return memo.Resolution{}
	}
	for _, part := range parts[1:] {
		if value == nil {
			logger.Debug("Cannot read property of nil value.", "expression", expr, "segment", part)
			return memo.Resolution{}
		}
		next, ok := r.props.Get(value, part)
		if !ok {
			logger.Debug("Property not found.", "expression", expr, "segment", part)
			return memo.Resolution{}
		}
		value = next
	}
	return memo.Resolution{Value: value, Found: true}
}

// Cache exposes the underlying memo table.
func (r *Resolver) Cache() *memo.Cache { return r.cache }
