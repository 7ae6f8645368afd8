package engine

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/resolver"
	"github.com/specialistvlad/beastgo/internal/scope"
)

// value resolves expr in two tiers. Literals and dotted paths are resolved
// structurally through the memoizing resolver; a path that cannot be resolved
// yields nil. Anything else is evaluated by the expression bridge.
func (st *state) value(ctx context.Context, expr string, vars *binding.Context, id scope.ID) (any, error) {
	expr = strings.TrimSpace(expr)
	res := st.resolver.Resolve(ctx, expr, vars, id)
	if res.Found {
		return res.Value, nil
	}
	if resolver.IsPath(expr) {
		return nil, nil
	}
	return st.evaluate(expr, vars)
}

func (st *state) evaluate(expr string, vars *binding.Context) (any, error) {
	v, err := st.bridge.Evaluate(expr, vars)
	if err != nil {
		return nil, &EvaluationError{Expression: expr, Err: err}
	}
	return v, nil
}

// condition evaluates a bs:if condition. A bare path takes the cheap
// structural route; an unresolved path is false.
func (st *state) condition(ctx context.Context, expr string, vars *binding.Context, id scope.ID) (bool, error) {
	expr = strings.TrimSpace(expr)
	if resolver.IsPath(expr) {
		res := st.resolver.Resolve(ctx, expr, vars, id)
		return res.Found && truthy(res.Value), nil
	}
	v, err := st.value(ctx, expr, vars, id)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// truthy coerces a value to a boolean by its string form: only booleans and
// values printing as "true" (any case) are true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	}
	return strings.EqualFold(stringify(v), "true")
}

// stringify renders a value for output. Nil renders as the empty string.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// valuesEqual compares two resolved values. Numbers compare by value
// regardless of Go type; a string compares with anything by string form.
func valuesEqual(a, b any) bool {
	if an, ok := number(a); ok {
		if bn, ok := number(b); ok {
			return an == bn
		}
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	_, aStr := a.(string)
	_, bStr := b.(string)
	if aStr || bStr {
		return stringify(a) == stringify(b)
	}
	return false
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// integer converts an integer-kinded value to int.
func integer(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	}
	return 0, false
}
