package binding_test

import (
	"testing"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestContext_OrderAndRebind(t *testing.T) {
	c := binding.New(language.English)
	c.Set("b", 1)
	c.Set("a", 2)
	c.Set("b", 3)

	require.Equal(t, []string{"b", "a"}, c.Keys())
	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestContext_NilIsPresent(t *testing.T) {
	c := binding.New(language.Und)
	c.Set("empty", nil)

	v, ok := c.Get("empty")
	require.True(t, ok)
	assert.Nil(t, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestContext_ChildShadowsWithoutLeaking(t *testing.T) {
	parent := binding.New(language.Und)
	parent.Set("item", "outer")

	child := parent.Child()
	child.Set("item", "inner")
	child.Set("local", true)

	v, _ := child.Get("item")
	assert.Equal(t, "inner", v)
	v, _ = parent.Get("item")
	assert.Equal(t, "outer", v)
	_, ok := parent.Get("local")
	assert.False(t, ok)
	assert.Equal(t, []string{"item", "local"}, child.Keys())
}

func TestContext_ShadowRestore(t *testing.T) {
	c := binding.New(language.Und)
	c.Set("x", 1)

	restore := c.Shadow("x", 2)
	v, _ := c.Get("x")
	require.Equal(t, 2, v)
	restore()
	v, _ = c.Get("x")
	require.Equal(t, 1, v)

	restore = c.Shadow("y", 5)
	restore()
	_, ok := c.Get("y")
	require.False(t, ok)
	require.Equal(t, []string{"x"}, c.Keys())
}

func TestContext_IsolateRecordsOuterReads(t *testing.T) {
	root := binding.FromMap(language.French, map[string]any{"user": "ann", "title": "t"})
	iso := root.Isolate()
	iso.Set("local", 1)
	nested := iso.Child()

	nested.Get("local")
	nested.Get("user")
	nested.Get("nope")

	assert.Equal(t, []string{"user"}, iso.Inherited())
	assert.Nil(t, nested.Inherited())
	assert.Equal(t, language.French, nested.Locale())
}

func TestContext_Range(t *testing.T) {
	root := binding.FromMap(language.Und, map[string]any{"a": 1, "b": 2})
	child := root.Child()
	child.Set("b", 20)
	child.Set("c", 30)

	got := map[string]any{}
	var order []string
	child.Range(func(k string, v any) bool {
		order = append(order, k)
		got[k] = v
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, map[string]any{"a": 1, "b": 20, "c": 30}, got)
	assert.Equal(t, 3, child.Len())
}
