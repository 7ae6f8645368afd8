// Package binding implements the variable environment of a render pass: an
// ordered name to value store plus the locale the pass renders for.
//
// A Context is layered. Child creates an overlay that shadows its parent, which
// is how loop variables and component-local assignments stay out of sibling
// scopes: the parent layer is never written through a child. Isolate creates
// an overlay that additionally records which names were satisfied by an outer
// layer, so callers can tell whether a subtree depended on caller data.
//
// A Context is owned by one render call and is not safe for concurrent use.
package binding
