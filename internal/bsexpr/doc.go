// Package bsexpr is the expression bridge of the template engine. It compiles
// expression text with the HCL native syntax, evaluates it against the live
// variables of a render and converts between Go values and cty values.
//
// A Cache holds compiled expressions keyed by their text and is shared by all
// renders of a process; compiled expressions carry no binding state. A Bridge
// holds the live bindings of one render and must not be shared between
// concurrent renders.
package bsexpr
