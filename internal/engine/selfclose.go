package engine

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// expandSelfClosing rewrites self-closing directive tags such as
// <bs:component name="x"/> into an explicit open and close pair. The HTML
// parser only honours "/>" on void elements, so without this the markup
// that follows would be nested inside the directive. Everything else is
// copied through byte for byte.
func expandSelfClosing(src string) string {
	if !strings.Contains(src, "/>") {
		return src
	}
	var b strings.Builder
	b.Grow(len(src) + 32)

	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// Unreachable for a strings.Reader; keep the source as is.
				return src
			}
			return b.String()
		}
		raw := string(z.Raw())
		if tt != html.SelfClosingTagToken {
			b.WriteString(raw)
			continue
		}
		name, _ := z.TagName()
		if !strings.HasPrefix(string(name), Prefix) {
			b.WriteString(raw)
			continue
		}
		b.WriteString(strings.TrimSuffix(raw, "/>"))
		b.WriteString("></")
		b.Write(name)
		b.WriteString(">")
	}
}
