// Package engine is the directive interpreter. It renders templates written
// in a small tag vocabulary (bs:var, bs:if, bs:switch, bs:for, bs:repeat,
// bs:component, bs:router) with {{ expr }} interpolations against a
// binding.Context.
//
// Three flavors exist. The HTML flavor parses templates with
// golang.org/x/net/html, rewrites the tree into a new one and serializes it.
// Text and CSS flavors only interpolate, appending to a string buffer.
//
// Values are looked up in two tiers: bare dotted paths are resolved
// structurally (and memoized per scope), everything else is evaluated as an
// HCL expression by internal/bsexpr.
package engine
