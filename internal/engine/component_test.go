package engine

import (
	"errors"
	"testing"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/loader"
	"github.com/specialistvlad/beastgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestComponent_DynamicUnwrapsAndRerenders(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"card.component.html": `<div class="card">{{ title }}</div>`,
	})
	template := `<section><bs:component name="card" class="ignored"></bs:component></section>`

	assert.Equal(t, `<section><div class="card">one</div></section>`, mustRender(t, e, template, map[string]any{"title": "one"}))
	assert.Equal(t, `<section><div class="card">two</div></section>`, mustRender(t, e, template, map[string]any{"title": "two"}))
	assert.Equal(t, 0, e.Store().Len())
}

func TestComponent_StaticIsRenderedOnce(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"banner.component.html": `<b>{{ title }}</b>`,
	})
	template := `<bs:component name="banner" static></bs:component>`

	ctx, logs := testutil.Context(t)
	first, err := e.Process(ctx, template, binding.FromMap(language.English, map[string]any{"title": "one"}))
	require.NoError(t, err)
	second, err := e.Process(ctx, template, binding.FromMap(language.English, map[string]any{"title": "two"}))
	require.NoError(t, err)

	assert.Equal(t, `<b>one</b>`, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, e.Store().Len())
	testutil.AssertLogged(t, logs, "Static component reads request-scoped variables.")

	// Another locale is another entry.
	german, err := e.Process(ctx, template, binding.FromMap(language.German, map[string]any{"title": "zwei"}))
	require.NoError(t, err)
	assert.Equal(t, `<b>zwei</b>`, german)
	assert.Equal(t, 2, e.Store().Len())

	e.ClearComponents(ctx)
	assert.Equal(t, 0, e.Store().Len())
	third, err := e.Process(ctx, template, binding.FromMap(language.English, map[string]any{"title": "three"}))
	require.NoError(t, err)
	assert.Equal(t, `<b>three</b>`, third)
}

func TestComponent_StaticFalseIsDynamic(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{"c.component.html": `{{ v }}`})
	template := `<bs:component name="c" static="false"></bs:component>`

	assert.Equal(t, "1", mustRender(t, e, template, map[string]any{"v": 1}))
	assert.Equal(t, "2", mustRender(t, e, template, map[string]any{"v": 2}))
}

func TestComponent_StaticOutputIsNotShared(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{"li.component.html": `<li>x</li>`})
	out := mustRender(t, e, `<ul><bs:component name="li" static></bs:component><bs:component name="li" static></bs:component></ul>`, nil)
	assert.Equal(t, `<ul><li>x</li><li>x</li></ul>`, out)
}

func TestComponent_LocaleVariant(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"hello.component.html":    `<p>Hello</p>`,
		"hello.fr.component.html": `<p>Bonjour</p>`,
	})
	ctx, _ := testutil.Context(t)

	out, err := e.Process(ctx, `<bs:component name="hello"></bs:component>`, binding.New(language.MustParse("fr-CA")))
	require.NoError(t, err)
	assert.Equal(t, `<p>Bonjour</p>`, out)

	out, err = e.Process(ctx, `<bs:component name="hello"></bs:component>`, binding.New(language.Italian))
	require.NoError(t, err)
	assert.Equal(t, `<p>Hello</p>`, out)
}

func TestComponent_NotFoundIsResourceError(t *testing.T) {
	e := newEngine(t, HTML, nil)

	out, err := render(t, e, `<p>before</p><bs:component name="missing"></bs:component>`, nil)
	require.Error(t, err)
	assert.Empty(t, out)

	var re *ResourceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "missing", re.Component)
	assert.Equal(t, ".html", re.Extension)
	assert.True(t, errors.Is(err, loader.ErrNotFound))

	// Static lookups fail the same way and store nothing.
	_, err = render(t, e, `<bs:component name="missing" static></bs:component>`, nil)
	assert.ErrorIs(t, err, loader.ErrNotFound)
	assert.Equal(t, 0, e.Store().Len())
}

func TestComponent_VariablesDoNotLeakToIncluder(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"setter.component.html": `<bs:var>secret = "s"</bs:var>{{ secret }}{{ outer }}`,
	})
	out := mustRender(t, e, `<bs:component name="setter"></bs:component>[{{ secret }}]{{ secret == null }}`, map[string]any{"outer": "!"})
	assert.Equal(t, "s![]true", out)
}

func TestComponent_DynamicName(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"icons/star.component.html": `<i>*</i>`,
	})
	out := mustRender(t, e, `<bs:component name="icons/{{ icon }}"></bs:component>`, map[string]any{"icon": "star"})
	assert.Equal(t, `<i>*</i>`, out)
}

func TestComponent_Recursion(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"self.component.html": `<bs:component name="self" static></bs:component>`,
		"ping.component.html": `<bs:component name="pong" static></bs:component>`,
		"pong.component.html": `<bs:component name="ping" static></bs:component>`,
		"deep.component.html": `<bs:component name="deep"></bs:component>`,
	})

	for _, name := range []string{"self", "ping", "deep"} {
		t.Run(name, func(t *testing.T) {
			_, err := render(t, e, `<bs:component name="`+name+`" static></bs:component>`, nil)
			var de *DirectiveError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "bs:component", de.Tag)
		})
	}
	assert.Equal(t, 0, e.Store().Len())
}

func TestComponent_NestedStaticInsideDynamic(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"page.component.html":   `<main><bs:component name="footer" static></bs:component>{{ user }}</main>`,
		"footer.component.html": `<footer>(c)</footer>`,
	})
	out := mustRender(t, e, `<bs:component name="page"></bs:component>`, map[string]any{"user": "ann"})
	assert.Equal(t, `<main><footer>(c)</footer>ann</main>`, out)
	assert.Equal(t, 1, e.Store().Len())
}

func TestRouter(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"home.component.html":  `<h1>Home</h1>`,
		"about.component.html": `<h1>About {{ site }}</h1>`,
	})
	template := `<nav>x</nav><bs:router>` +
		`<bs:route path="/" component="home"></bs:route>` +
		`<bs:route path="/about" component="about"></bs:route>` +
		`</bs:router>`

	testCases := []struct {
		path string
		want string
	}{
		{path: "/", want: `<nav>x</nav><h1>Home</h1>`},
		{path: "/ABOUT", want: `<nav>x</nav><h1>About beast</h1>`},
		{path: "/missing", want: `<nav>x</nav>`},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			out := mustRender(t, e, template, map[string]any{DefaultRouteVariable: tc.path, "site": "beast"})
			assert.Equal(t, tc.want, out)
		})
	}

	assert.Equal(t, "<nav>x</nav>", mustRender(t, e, template, nil), "no path variable matches nothing")

	_, err := render(t, e, `<bs:router><bs:route path="/"></bs:route></bs:router>`, nil)
	var de *DirectiveError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "component", de.Attribute)
}

func TestRouter_CustomVariable(t *testing.T) {
	e, err := New(Config{
		Loader:        loader.Map{"home.component.html": `home`},
		RouteVariable: "route",
	})
	require.NoError(t, err)

	out := mustRender(t, e, `<bs:router><bs:route path="/" component="home" static></bs:route></bs:router>`, map[string]any{"route": "/"})
	assert.Equal(t, "home", out)
	assert.Equal(t, 1, e.Store().Len())
}

func TestProcessComponent(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"card.component.html": `<div>{{ title }}</div>`,
	})
	ctx, _ := testutil.Context(t)

	out, err := e.ProcessComponent(ctx, "card", binding.FromMap(language.Und, map[string]any{"title": "T"}), false)
	require.NoError(t, err)
	assert.Equal(t, `<div>T</div>`, out)

	_, err = e.ProcessComponent(ctx, "nope", nil, false)
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestTextFlavor(t *testing.T) {
	e := newEngine(t, Text, loader.Map{
		"mail.component.txt": "Dear {{ name }},\n<b>not markup</b> {{ count + 1 }}",
	})
	ctx, _ := testutil.Context(t)
	vars := map[string]any{"name": "Ann", "count": 3}

	assert.Equal(t, "Hello Ann! 4 <bs:if>", mustRender(t, e, `Hello {{ name }}! {{ count + 1 }} <bs:if>`, vars))

	out, err := e.ProcessComponent(ctx, "mail", binding.FromMap(language.Und, vars), true)
	require.NoError(t, err)
	assert.Equal(t, "Dear Ann,\n<b>not markup</b> 4", out)

	again, err := e.ProcessComponent(ctx, "mail", binding.FromMap(language.Und, map[string]any{"name": "Bo", "count": 0}), true)
	require.NoError(t, err)
	assert.Equal(t, out, again, "static component served from the store")
}

func TestCSSFlavor(t *testing.T) {
	e := newEngine(t, CSS, loader.Map{
		"theme.component.css": "p { color: {{ color }}; }",
		"theme.component.txt": "wrong flavor",
	})
	ctx, _ := testutil.Context(t)

	out, err := e.ProcessComponent(ctx, "theme", binding.FromMap(language.Und, map[string]any{"color": "red"}), false)
	require.NoError(t, err)
	assert.Equal(t, "p { color: red; }", out)
}

func TestSelfClosingDirectives(t *testing.T) {
	e := newEngine(t, HTML, loader.Map{
		"hdr.component.html":  `<h1>H</h1>`,
		"icon.component.html": `<i>*</i>`,
		"a.component.html":    `A`,
		"b.component.html":    `B`,
	})

	t.Run("component keeps following siblings", func(t *testing.T) {
		out := mustRender(t, e, `<bs:component name="hdr"/><p>after</p>`, nil)
		assert.Equal(t, `<h1>H</h1><p>after</p>`, out)
	})

	t.Run("component between void elements", func(t *testing.T) {
		out := mustRender(t, e, `<p>x<br/><bs:component name="icon" />y<input name="q"/></p>`, nil)
		assert.Equal(t, `<p>x<br/><i>*</i>y<input name="q"/></p>`, out)
	})

	t.Run("every route is a direct child", func(t *testing.T) {
		template := `<bs:router><bs:route path="/a" component="a"/><bs:route path="/b" component="b"/></bs:router>`
		assert.Equal(t, "A", mustRender(t, e, template, map[string]any{DefaultRouteVariable: "/a"}))
		assert.Equal(t, "B", mustRender(t, e, template, map[string]any{DefaultRouteVariable: "/b"}))
	})
}
