package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandSelfClosing(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{name: "directive", src: `<bs:component name="a"/>`, want: `<bs:component name="a"></bs:component>`},
		{name: "space and case", src: `<BS:Route path="/x" component="a" />`, want: `<BS:Route path="/x" component="a" ></bs:route>`},
		{name: "void elements untouched", src: `<br/><input name="q"/>`, want: `<br/><input name="q"/>`},
		{name: "other elements untouched", src: `<div/>text`, want: `<div/>text`},
		{name: "no self-closing tag", src: `<p>{{ a }}</p>`, want: `<p>{{ a }}</p>`},
		{name: "raw text and comments", src: `<script>if (a<b/>c) {}</script><!-- <bs:x/> --><bs:var/>`, want: `<script>if (a<b/>c) {}</script><!-- <bs:x/> --><bs:var></bs:var>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, expandSelfClosing(tc.src))
		})
	}
}
