package loader

import (
	"context"
	"errors"

	"golang.org/x/text/language"
)

// ErrNotFound is returned (possibly wrapped) when no source exists for a
// component.
var ErrNotFound = errors.New("component not found")

// Loader returns the raw source of a component.
type Loader interface {
	// Load returns the source of the named component for ext (".html",
	// ".txt", ".css"). Implementations must return an error wrapping
	// ErrNotFound when the component does not exist.
	Load(ctx context.Context, name string, locale language.Tag, ext string) (string, error)
}

// Suffix is the marker between a component name and its extension.
const Suffix = ".component"

// FileName returns the file name of a component without locale.
func FileName(name, ext string) string {
	return name + Suffix + ext
}

// Candidates lists the file names tried for a component, most specific first:
// the full locale tag, its base language, then the plain name.
func Candidates(name string, locale language.Tag, ext string) []string {
	plain := FileName(name, ext)
	if locale == language.Und {
		return []string{plain}
	}
	out := []string{name + "." + locale.String() + Suffix + ext}
	if base, conf := locale.Base(); conf != language.No {
		if b := base.String(); b != locale.String() {
			out = append(out, name+"."+b+Suffix+ext)
		}
	}
	return append(out, plain)
}

// Map is a Loader over an in-memory set of component files keyed by file
// name, e.g. {"card.component.html": "<div>...</div>"}.
type Map map[string]string

// Load implements Loader.
func (m Map) Load(_ context.Context, name string, locale language.Tag, ext string) (string, error) {
	for _, file := range Candidates(name, locale, ext) {
		if src, ok := m[file]; ok {
			return src, nil
		}
	}
	return "", &NotFoundError{Name: name, Extension: ext}
}

// NotFoundError reports a component with no source.
type NotFoundError struct {
	Name      string
	Extension string
}

func (e *NotFoundError) Error() string {
	return "component '" + FileName(e.Name, e.Extension) + "' not found"
}

// Unwrap makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
