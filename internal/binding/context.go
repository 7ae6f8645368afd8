package binding

import (
	"sort"

	"golang.org/x/text/language"
)

// Context is an ordered, layered variable store with a locale tag.
type Context struct {
	parent *Context
	keys   []string
	values map[string]any
	locale *language.Tag

	// inherited is non-nil only for isolated layers.
	inherited map[string]struct{}
}

// New creates an empty root Context for the given locale. language.Und is
// used when the tag is the zero value.
func New(locale language.Tag) *Context {
	return &Context{values: make(map[string]any), locale: &locale}
}

// FromMap creates a root Context holding the entries of m. Keys are inserted
// in sorted order so iteration is deterministic.
func FromMap(locale language.Tag, m map[string]any) *Context {
	c := New(locale)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Set(k, m[k])
	}
	return c
}

// Child returns an overlay whose writes never reach c.
func (c *Context) Child() *Context {
	return &Context{parent: c, values: make(map[string]any)}
}

// Isolate returns an overlay like Child that also records every name it had
// to read from an outer layer.
func (c *Context) Isolate() *Context {
	child := c.Child()
	child.inherited = make(map[string]struct{})
	return child
}

// Get returns the value bound to name in the nearest layer. A name bound to
// nil reports ok=true.
func (c *Context) Get(name string) (any, bool) {
	if v, ok := c.values[name]; ok {
		return v, true
	}
	if c.parent == nil {
		return nil, false
	}
	v, ok := c.parent.Get(name)
	if ok && c.inherited != nil {
		c.inherited[name] = struct{}{}
	}
	return v, ok
}

// Set binds name in this layer, keeping its original insertion position when
// it is rebound.
func (c *Context) Set(name string, value any) {
	if _, ok := c.values[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.values[name] = value
}

// Delete removes name from this layer only. An outer binding becomes visible again.
func (c *Context) Delete(name string) {
	if _, ok := c.values[name]; !ok {
		return
	}
	delete(c.values, name)
	for i, k := range c.keys {
		if k == name {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Shadow binds name to value and returns a function restoring the previous
// state of this layer: the prior value, or absence.
func (c *Context) Shadow(name string, value any) (restore func()) {
	prev, had := c.values[name]
	c.Set(name, value)
	return func() {
		if had {
			c.values[name] = prev
			return
		}
		c.Delete(name)
	}
}

// Range calls fn for every visible binding, outer layers first, in insertion
// order. Shadowed entries are reported once, at their outermost position, with
// the innermost value. Range stops when fn returns false.
func (c *Context) Range(fn func(name string, value any) bool) {
	for _, k := range c.Keys() {
		v, _ := c.Get(k)
		if !fn(k, v) {
			return
		}
	}
}

// Keys returns the visible names in iteration order.
func (c *Context) Keys() []string {
	var outer []string
	if c.parent != nil {
		outer = c.parent.Keys()
	}
	seen := make(map[string]struct{}, len(outer)+len(c.keys))
	keys := make([]string, 0, len(outer)+len(c.keys))
	for _, k := range outer {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, k := range c.keys {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len reports the number of visible bindings.
func (c *Context) Len() int { return len(c.Keys()) }

// Locale returns the locale of the nearest layer that set one.
func (c *Context) Locale() language.Tag {
	for l := c; l != nil; l = l.parent {
		if l.locale != nil {
			return *l.locale
		}
	}
	return language.Und
}

// SetLocale overrides the locale for this layer and its children.
func (c *Context) SetLocale(tag language.Tag) {
	c.locale = &tag
}

// Inherited returns, sorted, the names an isolated layer (or any layer below
// it) read from outside. It is nil for layers created with Child.
func (c *Context) Inherited() []string {
	if c.inherited == nil {
		return nil
	}
	names := make([]string, 0, len(c.inherited))
	for k := range c.inherited {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
