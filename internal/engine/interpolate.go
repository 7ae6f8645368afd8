package engine

import (
	"context"
	"regexp"
	"strings"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/scope"
)

var interpolationPattern = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

// interpolate substitutes every {{ expr }} in text in a single left-to-right
// pass. Substituted output is never scanned again.
func (st *state) interpolate(ctx context.Context, text string, vars *binding.Context, id scope.ID) (string, error) {
	matches := interpolationPattern.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		v, err := st.value(ctx, text[m[2]:m[3]], vars, id)
		if err != nil {
			return "", err
		}
		b.WriteString(stringify(v))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}
