package property_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/specialistvlad/beastgo/internal/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string
	Zip  string `bs:"postcode"`
}

type user struct {
	Name    string
	Age     int
	Address *address
	secret  string
}

func (u user) Greeting() string { return "hi " + u.Name }

func (u *user) Locked() (bool, error) { return false, errors.New("unavailable") }

type record map[string]string

func (r record) Property(name string) (any, bool) {
	v, ok := r["x-"+name]
	return v, ok
}

type point struct{ X, Y int }

func TestTable_Get(t *testing.T) {
	table := property.NewTable()
	property.RegisterFunc(table, func(p point, name string) (any, bool) {
		if name == "sum" {
			return p.X + p.Y, true
		}
		return nil, false
	})

	u := &user{Name: "Ann", Age: 30, Address: &address{City: "Oslo", Zip: "0150"}, secret: "s"}

	testCases := []struct {
		name  string
		value any
		prop  string
		want  any
		found bool
	}{
		{name: "lower-camel field", value: u, prop: "name", want: "Ann", found: true},
		{name: "go field name", value: *u, prop: "Age", want: 30, found: true},
		{name: "tagged field", value: u.Address, prop: "postcode", want: "0150", found: true},
		{name: "unexported field", value: u, prop: "secret", found: false},
		{name: "value method", value: *u, prop: "greeting", want: "hi Ann", found: true},
		{name: "method returning error", value: u, prop: "locked", found: false},
		{name: "generic map", value: map[string]any{"k": nil}, prop: "k", want: nil, found: true},
		{name: "typed map", value: map[string]int{"n": 2}, prop: "n", want: 2, found: true},
		{name: "map miss", value: map[string]int{}, prop: "n", found: false},
		{name: "slice index", value: []string{"a", "b"}, prop: "1", want: "b", found: true},
		{name: "slice out of range", value: []string{"a"}, prop: "5", found: false},
		{name: "readable", value: record{"x-id": "7"}, prop: "id", want: "7", found: true},
		{name: "registered getter", value: point{X: 1, Y: 2}, prop: "sum", want: 3, found: true},
		{name: "nil", value: nil, prop: "x", found: false},
		{name: "nil pointer", value: (*user)(nil), prop: "name", found: false},
		{name: "scalar", value: 42, prop: "x", found: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := table.Get(tc.value, tc.prop)
			require.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestTable_Fields(t *testing.T) {
	table := property.NewTable()

	fields, ok := table.Fields(&address{City: "Rome", Zip: "00100"})
	require.True(t, ok)
	assert.Equal(t, map[string]any{"city": "Rome", "postcode": "00100"}, fields)

	_, ok = table.Fields(map[string]any{})
	assert.False(t, ok)
}

func TestTable_RegisterOverridesReflection(t *testing.T) {
	table := property.NewTable()
	table.Register(reflect.TypeOf(address{}), func(v any, name string) (any, bool) {
		return "fixed", true
	})

	got, ok := table.Get(address{City: "Rome"}, "city")
	require.True(t, ok)
	assert.Equal(t, "fixed", got)
}
