package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/componentstore"
	"github.com/specialistvlad/beastgo/internal/scope"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var documentPattern = regexp.MustCompile(`(?i)<!doctype|<html[\s>]`)

// template is a parsed markup source. Its tree is never modified after
// parsing so one template is shared by every render of the same text.
type template struct {
	document bool
	root     *html.Node // the document node, or a holder of fragment nodes
}

// parse returns the cached parse of src. Components are always parsed as
// body fragments; top-level templates as documents when they look like one.
func (e *Engine) parse(src string, fragment bool) (*template, error) {
	document := !fragment && documentPattern.MatchString(src)
	key := "f:" + src
	if document {
		key = "d:" + src
	}
	return e.templates.GetOrCreate(key, func() (*template, error) {
		src := expandSelfClosing(src)
		if document {
			doc, err := html.Parse(strings.NewReader(src))
			if err != nil {
				return nil, fmt.Errorf("failed to parse template: %w", err)
			}
			return &template{document: true, root: doc}, nil
		}
		nodes, err := html.ParseFragment(strings.NewReader(src), &html.Node{
			Type:     html.ElementNode,
			Data:     "body",
			DataAtom: atom.Body,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to parse template: %w", err)
		}
		holder := &html.Node{Type: html.DocumentNode}
		for _, n := range nodes {
			holder.AppendChild(n)
		}
		return &template{root: holder}, nil
	})
}

func (st *state) renderTemplate(ctx context.Context, src string, vars *binding.Context) (string, error) {
	r, err := st.renderSource(ctx, src, vars, scope.Root(), false)
	if err != nil {
		return "", err
	}
	return st.engine.serialize(r)
}

// renderSource renders raw source in the engine's flavor.
func (st *state) renderSource(ctx context.Context, src string, vars *binding.Context, id scope.ID, fragment bool) (*componentstore.Rendered, error) {
	if st.engine.flavor != HTML {
		text, err := st.interpolate(ctx, src, vars, id)
		if err != nil {
			return nil, err
		}
		return &componentstore.Rendered{Text: text}, nil
	}

	t, err := st.engine.parse(src, fragment)
	if err != nil {
		return nil, err
	}
	var nodes []*html.Node
	if t.document {
		nodes, err = st.renderNode(ctx, t.root, vars, id)
	} else {
		nodes, err = st.renderChildren(ctx, t.root, vars, id)
	}
	if err != nil {
		return nil, err
	}
	return &componentstore.Rendered{Nodes: nodes}, nil
}

func (e *Engine) serialize(r *componentstore.Rendered) (string, error) {
	if e.flavor != HTML {
		return r.Text, nil
	}
	var b strings.Builder
	for _, n := range r.Nodes {
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("failed to serialize output: %w", err)
		}
	}
	return b.String(), nil
}

// renderChildren renders the children of parent into new, detached nodes.
func (st *state) renderChildren(ctx context.Context, parent *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	var out []*html.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		nodes, err := st.renderNode(ctx, c, vars, id)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

// renderNode returns the nodes that replace n in the output.
func (st *state) renderNode(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) ([]*html.Node, error) {
	switch n.Type {
	case html.TextNode:
		text, err := st.interpolate(ctx, n.Data, vars, id)
		if err != nil || text == "" {
			return nil, err
		}
		return []*html.Node{{Type: html.TextNode, Data: text}}, nil

	case html.ElementNode:
		if strings.HasPrefix(n.Data, Prefix) {
			return st.directive(ctx, n, vars, id)
		}
		el, err := st.element(ctx, n, vars, id)
		if err != nil {
			return nil, err
		}
		return []*html.Node{el}, nil

	case html.DocumentNode:
		doc := &html.Node{Type: html.DocumentNode}
		children, err := st.renderChildren(ctx, n, vars, id)
		if err != nil {
			return nil, err
		}
		appendAll(doc, children)
		return []*html.Node{doc}, nil
	}

	// Comments and doctypes.
	return []*html.Node{{Type: n.Type, Data: n.Data, Attr: n.Attr}}, nil
}

// element copies a plain element, evaluating bs: attributes and
// interpolating attribute values.
func (st *state) element(ctx context.Context, n *html.Node, vars *binding.Context, id scope.ID) (*html.Node, error) {
	el := &html.Node{
		Type:      html.ElementNode,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	for _, a := range n.Attr {
		switch {
		case a.Namespace == "" && strings.HasPrefix(a.Key, Prefix):
			v, err := st.value(ctx, a.Val, vars, id)
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			el.Attr = append(el.Attr, html.Attribute{Key: strings.TrimPrefix(a.Key, Prefix), Val: stringify(v)})
		case strings.Contains(a.Val, "{{"):
			val, err := st.interpolate(ctx, a.Val, vars, id)
			if err != nil {
				return nil, err
			}
			el.Attr = append(el.Attr, html.Attribute{Namespace: a.Namespace, Key: a.Key, Val: val})
		default:
			el.Attr = append(el.Attr, a)
		}
	}

	children, err := st.renderChildren(ctx, n, vars, id)
	if err != nil {
		return nil, err
	}
	appendAll(el, children)
	return el, nil
}

func appendAll(parent *html.Node, children []*html.Node) {
	for _, c := range children {
		parent.AppendChild(c)
	}
}

// attr returns the value of a plain attribute of n.
func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// ownText concatenates the direct text children of n.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// isStatic reports whether a component-including tag asks for a static
// render: the static attribute is present and not "false".
func isStatic(n *html.Node) bool {
	v, ok := attr(n, "static")
	return ok && !strings.EqualFold(strings.TrimSpace(v), "false")
}
