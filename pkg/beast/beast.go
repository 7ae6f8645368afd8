// Package beast is the public entry point to the template engines.
//
// A template is markup (or plain text) with directives in the "bs:"
// namespace and {{ expression }} placeholders:
//
//	eng, err := beast.NewHTML(ctx, beast.Options{Components: os.DirFS("components")})
//	vars := beast.ContextFromMap(language.English, map[string]any{"user": user})
//	out, err := eng.Process(ctx, `<p>Hello {{ user.name }}</p>`, vars)
//
// Components are files named "<name>.component<ext>" and are included with
// <bs:component name="...">. Components marked static are rendered once per
// locale and shared by every engine using the same Store.
package beast

import (
	"context"
	"io/fs"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/componentstore"
	"github.com/specialistvlad/beastgo/internal/engine"
	"github.com/specialistvlad/beastgo/internal/inmemorystore"
	"github.com/specialistvlad/beastgo/internal/loader"
	"golang.org/x/text/language"
)

type (
	Engine  = engine.Engine
	Flavor  = engine.Flavor
	Context = binding.Context
	Loader  = loader.Loader
	Store   = componentstore.Store

	ResourceError   = engine.ResourceError
	EvaluationError = engine.EvaluationError
	DirectiveError  = engine.DirectiveError
)

const (
	HTML = engine.HTML
	Text = engine.Text
	CSS  = engine.CSS
)

// ErrNotFound is matched by errors.Is for every missing component.
var ErrNotFound = loader.ErrNotFound

// Options configures an engine built by New.
type Options struct {
	// Components is walked once for component files of the engine's
	// extension. Ignored when Loader is set.
	Components fs.FS

	// Loader supplies component sources directly.
	Loader Loader

	// Store holds static renders. Engines sharing a Store share static
	// components; a private store is used when nil.
	Store Store

	// RouteVariable overrides the "$path" variable read by bs:router.
	RouteVariable string

	// MaxDepth overrides the component nesting limit.
	MaxDepth int
}

// New creates an engine of the given flavor.
func New(ctx context.Context, flavor Flavor, opts Options) (*Engine, error) {
	l := opts.Loader
	if l == nil {
		if opts.Components == nil {
			l = loader.Map{}
		} else {
			fsLoader, err := loader.NewFS(ctx, opts.Components, flavor.Extension())
			if err != nil {
				return nil, err
			}
			l = fsLoader
		}
	}
	return engine.New(engine.Config{
		Flavor:        flavor,
		Loader:        l,
		Store:         opts.Store,
		RouteVariable: opts.RouteVariable,
		MaxDepth:      opts.MaxDepth,
	})
}

// NewHTML creates a markup engine for ".html" components.
func NewHTML(ctx context.Context, opts Options) (*Engine, error) { return New(ctx, HTML, opts) }

// NewText creates a plain-text engine for ".txt" components.
func NewText(ctx context.Context, opts Options) (*Engine, error) { return New(ctx, Text, opts) }

// NewCSS creates a plain-text engine for ".css" components.
func NewCSS(ctx context.Context, opts Options) (*Engine, error) { return New(ctx, CSS, opts) }

// NewStore returns an empty in-memory static component store.
func NewStore() Store { return inmemorystore.New() }

// Components returns a Loader serving sources keyed by file name, e.g.
// "card.component.html".
func Components(files map[string]string) Loader { return loader.Map(files) }

// NewContext returns an empty variable context for locale.
func NewContext(locale language.Tag) *Context { return binding.New(locale) }

// ContextFromMap returns a context holding the entries of vars.
func ContextFromMap(locale language.Tag, vars map[string]any) *Context {
	return binding.FromMap(locale, vars)
}
