package bsexpr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/beastgo/internal/shardcache"
	"github.com/zclconf/go-cty/cty/function"
)

// Compiled is a parsed expression plus the names it depends on.
type Compiled struct {
	Text      string
	Expr      hclsyntax.Expression
	Roots     []string // root variable names, sorted and unique
	Functions []string // called function names, sorted and unique
}

// Cache compiles expressions once per distinct text. It is safe for
// concurrent use.
type Cache struct {
	entries   *shardcache.Cache[*Compiled]
	functions map[string]function.Function
}

// NewCache creates a compiled-expression cache validating calls against funcs.
// A nil funcs means Functions().
func NewCache(funcs map[string]function.Function) *Cache {
	if funcs == nil {
		funcs = Functions()
	}
	return &Cache{entries: shardcache.New[*Compiled](), functions: funcs}
}

// Compile returns the compiled form of text, parsing it on first use.
func (c *Cache) Compile(text string) (*Compiled, error) {
	return c.entries.GetOrCreate(text, func() (*Compiled, error) {
		return c.compile(text)
	})
}

// Len reports how many distinct expressions have been compiled.
func (c *Cache) Len() int { return c.entries.Len() }

func (c *Cache) compile(text string) (*Compiled, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	expr, diags := hclsyntax.ParseExpression([]byte(text), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse: %w", diags)
	}
	roots, funcs := extractRootsAndFunctions(expr)
	for _, name := range funcs {
		if _, ok := c.functions[name]; !ok {
			return nil, fmt.Errorf("call to unknown function %q", name)
		}
	}
	return &Compiled{Text: text, Expr: expr, Roots: roots, Functions: funcs}, nil
}

// references collects, in one pass over the syntax tree, the free variable
// roots and the called functions of an expression. Names bound by a for
// expression are local to its key, value and condition parts.
type references struct {
	roots     map[string]struct{}
	functions map[string]struct{}
}

func extractRootsAndFunctions(expr hclsyntax.Expression) ([]string, []string) {
	refs := &references{roots: map[string]struct{}{}, functions: map[string]struct{}{}}
	refs.visit(expr, nil)
	return sortedKeys(refs.roots), sortedKeys(refs.functions)
}

func (r *references) visit(expr hclsyntax.Expression, locals map[string]bool) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if name := e.Traversal.RootName(); !locals[name] {
			r.roots[name] = struct{}{}
		}
	case *hclsyntax.RelativeTraversalExpr:
		r.visit(e.Source, locals)
	case *hclsyntax.FunctionCallExpr:
		r.functions[e.Name] = struct{}{}
		r.visitAll(e.Args, locals)
	case *hclsyntax.BinaryOpExpr:
		r.visitAll([]hclsyntax.Expression{e.LHS, e.RHS}, locals)
	case *hclsyntax.UnaryOpExpr:
		r.visit(e.Val, locals)
	case *hclsyntax.ConditionalExpr:
		r.visitAll([]hclsyntax.Expression{e.Condition, e.TrueResult, e.FalseResult}, locals)
	case *hclsyntax.ParenthesesExpr:
		r.visit(e.Expression, locals)
	case *hclsyntax.TemplateExpr:
		r.visitAll(e.Parts, locals)
	case *hclsyntax.TemplateWrapExpr:
		r.visit(e.Wrapped, locals)
	case *hclsyntax.TemplateJoinExpr:
		r.visit(e.Tuple, locals)
	case *hclsyntax.TupleConsExpr:
		r.visitAll(e.Exprs, locals)
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			r.visit(item.KeyExpr, locals)
			r.visit(item.ValueExpr, locals)
		}
	case *hclsyntax.ObjectConsKeyExpr:
		// A bare identifier key such as {name = 1} is a literal attribute name.
		if e.ForceNonLiteral || hcl.ExprAsKeyword(e.Wrapped) == "" {
			r.visit(e.Wrapped, locals)
		}
	case *hclsyntax.IndexExpr:
		r.visitAll([]hclsyntax.Expression{e.Collection, e.Key}, locals)
	case *hclsyntax.SplatExpr:
		r.visit(e.Source, locals)
		r.visit(e.Each, locals)
	case *hclsyntax.ForExpr:
		r.visit(e.CollExpr, locals)
		inner := make(map[string]bool, len(locals)+2)
		for name := range locals {
			inner[name] = true
		}
		inner[e.ValVar] = true
		if e.KeyVar != "" {
			inner[e.KeyVar] = true
		}
		r.visitAll([]hclsyntax.Expression{e.KeyExpr, e.ValExpr, e.CondExpr}, inner)
	}
}

func (r *references) visitAll(exprs []hclsyntax.Expression, locals map[string]bool) {
	for _, expr := range exprs {
		r.visit(expr, locals)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
