package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/bsexpr"
	"github.com/specialistvlad/beastgo/internal/componentstore"
	"github.com/specialistvlad/beastgo/internal/ctxlog"
	"github.com/specialistvlad/beastgo/internal/inmemorystore"
	"github.com/specialistvlad/beastgo/internal/loader"
	"github.com/specialistvlad/beastgo/internal/property"
	"github.com/specialistvlad/beastgo/internal/scope"
	"github.com/specialistvlad/beastgo/internal/shardcache"
	"golang.org/x/text/language"
)

// Prefix marks directive tags and directive attributes.
const Prefix = "bs:"

const (
	DefaultRouteVariable = "$path"
	DefaultMaxDepth      = 32
)

// Flavor selects how templates are interpreted and which component files
// are used.
type Flavor int

const (
	HTML Flavor = iota
	Text
	CSS
)

func (f Flavor) String() string {
	switch f {
	case HTML:
		return "html"
	case Text:
		return "text"
	case CSS:
		return "css"
	}
	return fmt.Sprintf("flavor(%d)", int(f))
}

// Extension returns the component file extension of the flavor.
func (f Flavor) Extension() string {
	switch f {
	case Text:
		return ".txt"
	case CSS:
		return ".css"
	}
	return ".html"
}

// ParseFlavor parses "html", "text" or "css".
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html":
		return HTML, nil
	case "text", "txt":
		return Text, nil
	case "css":
		return CSS, nil
	}
	return 0, fmt.Errorf("unknown engine flavor '%s'", s)
}

// Config configures an Engine. Only Loader is required.
type Config struct {
	Flavor Flavor
	Loader loader.Loader

	// Store holds static component renders. It may be shared between
	// engines; a fresh in-memory store is used when nil.
	Store componentstore.Store

	// Expressions is the compiled-expression cache. It may be shared
	// between engines; it is keyed by expression text only.
	Expressions *bsexpr.Cache

	// Properties reads nested properties of context values.
	Properties *property.Table

	// RouteVariable names the context variable holding the current path
	// for bs:router.
	RouteVariable string

	// MaxDepth caps component nesting.
	MaxDepth int
}

// Engine renders templates. It is safe for concurrent use; every call to
// Process owns its own per-render caches.
type Engine struct {
	flavor    Flavor
	loader    loader.Loader
	store     componentstore.Store
	exprs     *bsexpr.Cache
	props     *property.Table
	routeVar  string
	maxDepth  int
	templates *shardcache.Cache[*template]
	states    sync.Pool
}

// New creates an engine from cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Loader == nil {
		return nil, errors.New("engine requires a component loader")
	}
	if cfg.Flavor < HTML || cfg.Flavor > CSS {
		return nil, fmt.Errorf("unsupported engine flavor %s", cfg.Flavor)
	}
	if cfg.Store == nil {
		cfg.Store = inmemorystore.New()
	}
	if cfg.Expressions == nil {
		cfg.Expressions = bsexpr.NewCache(nil)
	}
	if cfg.Properties == nil {
		cfg.Properties = property.NewTable()
	}
	if cfg.RouteVariable == "" {
		cfg.RouteVariable = DefaultRouteVariable
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}

	e := &Engine{
		flavor:    cfg.Flavor,
		loader:    cfg.Loader,
		store:     cfg.Store,
		exprs:     cfg.Expressions,
		props:     cfg.Properties,
		routeVar:  cfg.RouteVariable,
		maxDepth:  cfg.MaxDepth,
		templates: shardcache.New[*template](),
	}
	e.states.New = func() any { return e.newState() }
	return e, nil
}

// Flavor returns the engine flavor.
func (e *Engine) Flavor() Flavor { return e.flavor }

// Process renders template against vars. A nil vars renders against an empty
// context. Per-render caches are dropped before Process returns.
func (e *Engine) Process(ctx context.Context, template string, vars *binding.Context) (string, error) {
	if vars == nil {
		vars = binding.New(language.Und)
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Render started.", "flavor", e.flavor)

	st := e.acquire()
	defer e.release(st)

	out, err := st.renderTemplate(ctx, template, vars)
	if err != nil {
		return "", err
	}
	st.logFinished(ctx)
	return out, nil
}

// ProcessComponent renders the named component as a top-level template. A
// static render is served from, and stored into, the component store.
func (e *Engine) ProcessComponent(ctx context.Context, name string, vars *binding.Context, static bool) (string, error) {
	if vars == nil {
		vars = binding.New(language.Und)
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Component render started.", "flavor", e.flavor, "component", name, "static", static)

	st := e.acquire()
	defer e.release(st)

	r, err := st.component(ctx, name, static, vars, scope.Root())
	if err != nil {
		return "", err
	}
	out, err := e.serialize(r)
	if err != nil {
		return "", err
	}
	st.logFinished(ctx)
	return out, nil
}

// ClearComponents drops every stored static component render.
func (e *Engine) ClearComponents(ctx context.Context) {
	e.store.Clear(ctx)
}

// Store returns the component store in use.
func (e *Engine) Store() componentstore.Store { return e.store }
