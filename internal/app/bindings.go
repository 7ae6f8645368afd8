package app

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/beastgo/internal/binding"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// LoadBindings reads a YAML (or JSON) document of top-level variables from
// path.
func LoadBindings(path string, locale language.Tag) (*binding.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open context file: %w", err)
	}
	defer f.Close()

	vars, err := ReadBindings(f, locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load context file %s: %w", path, err)
	}
	return vars, nil
}

// ReadBindings decodes a YAML (or JSON) mapping into a root Context. An empty
// document gives an empty Context.
func ReadBindings(r io.Reader, locale language.Tag) (*binding.Context, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return binding.New(locale), nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	m, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("context must be a mapping of variable names, got %T", doc)
	}
	return binding.FromMap(locale, m), nil
}

// normalize converts the generic maps yaml.v3 produces for non-string keys
// into map[string]any so paths can traverse them.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, elem := range t {
			t[k] = normalize(elem)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[fmt.Sprint(k)] = normalize(elem)
		}
		return out
	case []any:
		for i, elem := range t {
			t[i] = normalize(elem)
		}
		return t
	}
	return v
}
