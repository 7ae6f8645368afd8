package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/beastgo/internal/engine"
	"github.com/specialistvlad/beastgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "template", cfg: Config{TemplatePath: "page.html"}},
		{name: "component", cfg: Config{ComponentName: "card", Static: true}},
		{name: "nothing to render", cfg: Config{}, wantErr: "a template path or a component name is required"},
		{name: "both", cfg: Config{TemplatePath: "p.html", ComponentName: "card"}, wantErr: "cannot be used together"},
		{name: "static template", cfg: Config{TemplatePath: "p.html", Static: true}, wantErr: "static rendering requires a component name"},
		{name: "bad engine", cfg: Config{TemplatePath: "p.html", Engine: "xml"}, wantErr: "unknown engine flavor 'xml'"},
		{name: "bad locale", cfg: Config{TemplatePath: "p.html", Locale: "not a tag"}, wantErr: "invalid locale"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "html", cfg.Engine)
		})
	}
}

func TestNewConfig_NormalizesEngine(t *testing.T) {
	cfg, err := NewConfig(Config{TemplatePath: "a.txt", Engine: "TXT", Locale: "de-AT"})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Engine)
	assert.Equal(t, engine.Text, cfg.flavor())
	assert.Equal(t, language.MustParse("de-AT"), cfg.locale())
}

func TestReadBindings(t *testing.T) {
	doc := `
user:
  name: Ada
  age: 36
tags: [a, b]
codes:
  1: one
ratio: 0.5
`
	vars, err := ReadBindings(strings.NewReader(doc), language.English)
	require.NoError(t, err)

	got := map[string]any{}
	vars.Range(func(name string, value any) bool {
		got[name] = value
		return true
	})
	want := map[string]any{
		"user":  map[string]any{"name": "Ada", "age": 36},
		"tags":  []any{"a", "b"},
		"codes": map[string]any{"1": "one"},
		"ratio": 0.5,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"codes", "ratio", "tags", "user"}, vars.Keys())
	assert.Equal(t, language.English, vars.Locale())
}

func TestReadBindings_JSONAndEmpty(t *testing.T) {
	vars, err := ReadBindings(strings.NewReader(`{"title": "x"}`), language.Und)
	require.NoError(t, err)
	v, ok := vars.Get("title")
	require.True(t, ok)
	assert.Equal(t, "x", v)

	empty, err := ReadBindings(strings.NewReader("  \n"), language.Und)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = ReadBindings(strings.NewReader("- a\n- b\n"), language.Und)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context must be a mapping")
}

func TestLoadBindings_MissingFile(t *testing.T) {
	_, err := LoadBindings(filepath.Join(t.TempDir(), "nope.yaml"), language.Und)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open context file")
}

func TestNewApp_PanicsOnMissingComponents(t *testing.T) {
	cfg, err := NewConfig(Config{TemplatePath: "p.html", ComponentsPath: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	assert.PanicsWithError(t, "failed to load components: components path not found: "+cfg.ComponentsPath, func() {
		NewApp(&testutil.SafeBuffer{}, cfg)
	})
}

func TestRun_Template(t *testing.T) {
	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{
		"page.html":                       `<main><bs:component name="greet"></bs:component></main>`,
		"context.yaml":                    "user:\n  name: Ada\n",
		"components/greet.component.html": `<p>Hello {{ user.name }}</p>`,
	})
	cfg, err := NewConfig(Config{
		TemplatePath:   filepath.Join(dir, "page.html"),
		ContextPath:    filepath.Join(dir, "context.yaml"),
		ComponentsPath: filepath.Join(dir, "components"),
		LogLevel:       "debug",
	})
	require.NoError(t, err)
	logs := &testutil.SafeBuffer{}
	var out strings.Builder

	// --- Act ---
	err = NewApp(logs, cfg).Run(context.Background(), &out)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, `<main><p>Hello Ada</p></main>`, out.String())
	testutil.AssertLogged(t, logs, "Components loaded.")
	testutil.AssertLogged(t, logs, "Render finished.")
}

func TestRun_ComponentWithRouteToFile(t *testing.T) {
	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{
		"components/app.component.html":  `<bs:router><bs:route path="/docs" component="docs"></bs:route></bs:router>`,
		"components/docs.component.html": `<h1>Docs</h1>`,
	})
	output := filepath.Join(dir, "out.html")
	cfg, err := NewConfig(Config{
		ComponentName:  "app",
		ComponentsPath: filepath.Join(dir, "components"),
		RoutePath:      "/docs",
		OutputPath:     output,
	})
	require.NoError(t, err)
	var out strings.Builder

	// --- Act ---
	err = NewApp(&testutil.SafeBuffer{}, cfg).Run(context.Background(), &out)

	// --- Assert ---
	require.NoError(t, err)
	assert.Empty(t, out.String())
	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, `<h1>Docs</h1>`, string(written))
}

func TestRun_StaticComponentIsStored(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"components/style.component.css": `body { color: {{ color }}; }`,
		"context.json":                   `{"color": "red"}`,
	})
	cfg, err := NewConfig(Config{
		ComponentName:  "style",
		Static:         true,
		Engine:         "css",
		ContextPath:    filepath.Join(dir, "context.json"),
		ComponentsPath: filepath.Join(dir, "components"),
	})
	require.NoError(t, err)

	a := NewApp(&testutil.SafeBuffer{}, cfg)
	var out strings.Builder
	require.NoError(t, a.Run(context.Background(), &out))

	assert.Equal(t, `body { color: red; }`, out.String())
	assert.Equal(t, 1, a.Engine().Store().Len())
}

func TestRun_Errors(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"page.html": `<bs:component name="missing"></bs:component>`,
	})

	t.Run("missing template", func(t *testing.T) {
		cfg, err := NewConfig(Config{TemplatePath: filepath.Join(dir, "nope.html")})
		require.NoError(t, err)
		err = NewApp(&testutil.SafeBuffer{}, cfg).Run(context.Background(), &strings.Builder{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read template")
	})

	t.Run("missing component", func(t *testing.T) {
		cfg, err := NewConfig(Config{TemplatePath: filepath.Join(dir, "page.html")})
		require.NoError(t, err)
		err = NewApp(&testutil.SafeBuffer{}, cfg).Run(context.Background(), &strings.Builder{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "component 'missing.component.html' not found")
	})

	t.Run("missing context", func(t *testing.T) {
		cfg, err := NewConfig(Config{TemplatePath: filepath.Join(dir, "page.html"), ContextPath: filepath.Join(dir, "ctx.yaml")})
		require.NoError(t, err)
		err = NewApp(&testutil.SafeBuffer{}, cfg).Run(context.Background(), &strings.Builder{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open context file")
	})
}

func TestNewLogger(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	logger := newLogger("warn", "json", buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	text := &testutil.SafeBuffer{}
	newLogger("bogus", "text", text).Info("fallback")
	assert.Contains(t, text.String(), "msg=fallback")
}
