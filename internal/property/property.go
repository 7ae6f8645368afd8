// Package property reads named properties out of arbitrary Go values.
//
// Resolution goes through an explicit capability chain instead of guessing
// accessor names at call time:
//
//  1. values implementing Readable answer for themselves;
//  2. getters registered for the value's exact type;
//  3. maps with string keys (key lookup);
//  4. slices and arrays (decimal index);
//  5. structs, through a per-type getter table built once from exported
//     fields and zero-argument methods. A member is reachable by its `bs`
//     tag, its Go name, or its Go name with a lower-cased first letter.
package property

import (
	"reflect"
	"strconv"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Readable is implemented by values that resolve their own properties.
type Readable interface {
	Property(name string) (any, bool)
}

// Getter reads property name from v.
type Getter func(v any, name string) (any, bool)

// Table is a registry of getters plus a cache of struct getter tables. It is
// safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	getters map[reflect.Type]Getter
	layouts sync.Map // reflect.Type -> *layout
}

// NewTable creates a table with no registered getters.
func NewTable() *Table {
	return &Table{getters: make(map[reflect.Type]Getter)}
}

// Register installs g for values whose dynamic type is exactly typ.
func (t *Table) Register(typ reflect.Type, g Getter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.getters[typ] = g
}

// RegisterFunc is the typed form of Register.
func RegisterFunc[T any](t *Table, fn func(v T, name string) (any, bool)) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	t.Register(typ, func(v any, name string) (any, bool) {
		tv, ok := v.(T)
		if !ok {
			return nil, false
		}
		return fn(tv, name)
	})
}

func (t *Table) getter(typ reflect.Type) (Getter, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.getters[typ]
	return g, ok
}

// Get reads property name from v. It never panics; anything unreadable
// reports ok=false.
func (t *Table) Get(v any, name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	if r, ok := v.(Readable); ok {
		return r.Property(name)
	}
	if g, ok := t.getter(reflect.TypeOf(v)); ok {
		return g(v, name)
	}
	if m, ok := v.(map[string]any); ok {
		val, found := m[name]
		return val, found
	}

	rv := reflect.ValueOf(v)
	if val, ok := t.method(rv, name); ok {
		return val, true
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Struct:
		l := t.layout(rv.Type())
		idx, ok := l.fields[name]
		if !ok {
			return nil, false
		}
		f, err := rv.FieldByIndexErr(idx)
		if err != nil {
			return nil, false
		}
		return f.Interface(), true
	}
	return nil, false
}

// Fields enumerates the properties of a struct value (or pointer to one)
// under their canonical property names. It reports false for other values.
func (t *Table) Fields(v any) (map[string]any, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	l := t.layout(rv.Type())
	out := make(map[string]any, len(l.names))
	for _, name := range l.names {
		f, err := rv.FieldByIndexErr(l.fields[name])
		if err != nil {
			continue
		}
		out[name] = f.Interface()
	}
	return out, true
}

// method calls a zero-argument exported method matched by name. It accepts
// methods returning one value, or a value and a nil error.
func (t *Table) method(rv reflect.Value, name string) (val any, ok bool) {
	if !rv.IsValid() {
		return nil, false
	}
	m := rv.MethodByName(exported(name))
	if !m.IsValid() {
		return nil, false
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() == 0 || mt.NumOut() > 2 {
		return nil, false
	}
	if mt.NumOut() == 2 && !mt.Out(1).Implements(errorType) {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			val, ok = nil, false
		}
	}()
	out := m.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, false
	}
	return out[0].Interface(), true
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type layout struct {
	fields map[string][]int
	names  []string
}

func (t *Table) layout(typ reflect.Type) *layout {
	if l, ok := t.layouts.Load(typ); ok {
		return l.(*layout)
	}
	l := &layout{fields: make(map[string][]int)}
	for _, f := range reflect.VisibleFields(typ) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		canonical := lowerFirst(f.Name)
		if tag := f.Tag.Get("bs"); tag != "" {
			if tag == "-" {
				continue
			}
			canonical = tag
		}
		if _, dup := l.fields[canonical]; !dup {
			l.names = append(l.names, canonical)
		}
		l.fields[canonical] = f.Index
		if _, taken := l.fields[f.Name]; !taken {
			l.fields[f.Name] = f.Index
		}
	}
	actual, _ := t.layouts.LoadOrStore(typ, l)
	return actual.(*layout)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func exported(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
