// Package componentstore defines the interface for the process-wide store of
// rendered components shared by every render pass.
//
// # Why Component Store Exists
//
// Templates include named sub-templates ("components") with the bs:component
// and bs:router directives. A component is either:
//   - **Static:** rendered once per locale and reused verbatim until the store
//     is cleared. The first render is frozen; later requests never
//     re-evaluate its directives.
//   - **Dynamic:** rendered from source on every inclusion. Dynamic requests
//     never read or write the store.
//
// The static/dynamic distinction is an explicit parameter of GetOrRender
// rather than a property of the component.
//
// # Lifecycle and Usage
//
// The store is:
//  1. **Created** once per engine (or shared between engines of one process)
//  2. **Populated** lazily by the first static render of each key
//  3. **Read** concurrently by every render pass that includes a static component
//  4. **Cleared** explicitly via Clear (the engine's ClearComponents)
//
// # Soundness
//
// A static entry is only sound when the component's render does not depend
// on request data. The engine renders static components in an isolated
// binding layer and logs a warning when one reads caller variables.
package componentstore

import (
	"context"
	"fmt"

	"golang.org/x/net/html"
)

// Key identifies a static component entry.
type Key struct {
	Locale    string // BCP 47 tag, "und" when the render has no locale
	Name      string // component name, e.g. "forms/input"
	Extension string // engine extension, e.g. ".html"
}

// String returns a stable textual form of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Locale, k.Name, k.Extension)
}

// Rendered is the output of one component render. Markup engines fill Nodes
// with detached top-level nodes; text engines fill Text.
type Rendered struct {
	Nodes []*html.Node
	Text  string
}

// Clone returns a deep copy whose nodes can be attached to a new parent
// without disturbing the original.
func (r *Rendered) Clone() *Rendered {
	if r == nil {
		return nil
	}
	out := &Rendered{Text: r.Text}
	if r.Nodes != nil {
		out.Nodes = make([]*html.Node, len(r.Nodes))
		for i, n := range r.Nodes {
			out.Nodes[i] = CloneNode(n)
		}
	}
	return out
}

// CloneNode deep-copies n and its descendants. The copy has no parent or
// siblings.
func CloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(CloneNode(child))
	}
	return c
}

// RenderFunc produces a component render. Nested renders must use the ctx it
// is given.
type RenderFunc func(ctx context.Context) (*Rendered, error)

// Store is the interface for the shared component cache.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use: the store is the only
// structure shared between concurrent render passes.
//
// # Typical Implementation
//
// See internal/inmemorystore for the in-memory implementation using sync.Map
// and singleflight.
type Store interface {
	// GetOrRender returns the render of the component identified by key.
	//
	// For a static request a stored entry is returned unchanged. On a
	// miss, render is called and its result stored under key before being
	// returned. When several goroutines miss the same key at once the
	// implementation may render once and share the result, or keep the first
	// stored result; either way all callers observe the same entry.
	//
	// For a dynamic request render is always called and nothing is stored.
	//
	// Errors from render are returned as is and never stored.
	//
	// Callers must treat the returned value as read-only; use Clone before
	// attaching its nodes to a tree.
	GetOrRender(ctx context.Context, key Key, static bool, render RenderFunc) (*Rendered, error)

	// Get returns a stored static entry.
	Get(ctx context.Context, key Key) (*Rendered, bool)

	// Clear removes every stored entry.
	Clear(ctx context.Context)

	// Len reports the number of stored entries.
	Len() int
}
