package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/specialistvlad/beastgo/internal/ctxlog"
	"github.com/specialistvlad/beastgo/internal/fsutil"
	"golang.org/x/text/language"
)

// FS is a Loader holding every component file found under a root of an
// fs.FS. Sources are read once at construction; the FS is read-only
// afterwards and safe for concurrent use.
type FS struct {
	files map[string]string
}

// NewFS walks fsys and preloads every "*.component<ext>" file for the given
// extensions. File names are kept relative to fsys, so "forms/input" names the
// file "forms/input.component.html".
func NewFS(ctx context.Context, fsys fs.FS, exts ...string) (*FS, error) {
	logger := ctxlog.FromContext(ctx)
	l := &FS{files: make(map[string]string)}

	for _, ext := range exts {
		paths, err := fsutil.FindFilesByExtension(fsys, ".", Suffix+ext)
		if err != nil {
			return nil, fmt.Errorf("failed to discover components for %s: %w", ext, err)
		}
		for _, p := range paths {
			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return nil, fmt.Errorf("failed to read component file %s: %w", p, err)
			}
			l.files[path.Clean(p)] = string(data)
			logger.Debug("Discovered component.", "file", p)
		}
	}

	logger.Debug("Component discovery finished.", "count", len(l.files))
	return l, nil
}

// NewDir preloads components from a directory on disk.
func NewDir(ctx context.Context, dir string, exts ...string) (*FS, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("components path not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("components path is not a directory: %s", dir)
	}
	return NewFS(ctx, os.DirFS(dir), exts...)
}

// Load implements Loader.
func (l *FS) Load(_ context.Context, name string, locale language.Tag, ext string) (string, error) {
	for _, file := range Candidates(name, locale, ext) {
		if src, ok := l.files[file]; ok {
			return src, nil
		}
	}
	return "", &NotFoundError{Name: name, Extension: ext}
}

// Names lists the component names available for ext, locale variants
// excluded.
func (l *FS) Names(ext string) []string {
	suffix := Suffix + ext
	var names []string
	for file := range l.files {
		if !strings.HasSuffix(file, suffix) {
			continue
		}
		name := strings.TrimSuffix(file, suffix)
		if base := path.Base(name); strings.Contains(base, ".") {
			if _, err := language.Parse(base[strings.LastIndex(base, ".")+1:]); err == nil {
				continue
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
