// Package loader supplies raw component source text to the engines.
//
// A component named "forms/input" rendered by the HTML engine lives in the
// file "forms/input.component.html". A locale variant such as
// "forms/input.de.component.html" is preferred when the render locale matches
// it, with the base language tried after the full tag.
package loader
