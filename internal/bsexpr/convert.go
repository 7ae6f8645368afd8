package bsexpr

import (
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/specialistvlad/beastgo/internal/property"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter converts native Go values to cty values and back. Struct values
// are converted through a property.Table so expressions see the same property
// names as path lookups do.
type Converter struct {
	props *property.Table
}

// NewConverter creates a converter reading structs through props.
func NewConverter(props *property.Table) *Converter {
	if props == nil {
		props = property.NewTable()
	}
	return &Converter{props: props}
}

// ToCtyValue converts a native Go value into its corresponding cty.Value. A
// nil value becomes a dynamically typed null.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return t, nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case float64:
		return floatVal(t)
	case []any:
		return c.tuple(reflect.ValueOf(t))
	case map[string]any:
		attrs := make(map[string]cty.Value, len(t))
		for k, elem := range t {
			cv, err := c.ToCtyValue(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute '%s': %w", k, err)
			}
			attrs[k] = cv
		}
		return objectVal(attrs), nil
	}
	return c.reflectValue(reflect.ValueOf(v))
}

func (c *Converter) reflectValue(rv reflect.Value) (cty.Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return c.ToCtyValue(rv.Elem().Interface())
	case reflect.String:
		return cty.StringVal(rv.String()), nil
	case reflect.Bool:
		return cty.BoolVal(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cty.NumberIntVal(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cty.NumberUIntVal(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return floatVal(rv.Float())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return cty.EmptyTupleVal, nil
		}
		return c.tuple(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return cty.NilVal, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		attrs := make(map[string]cty.Value, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			key := it.Key().String()
			cv, err := c.ToCtyValue(it.Value().Interface())
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute '%s': %w", key, err)
			}
			attrs[key] = cv
		}
		return objectVal(attrs), nil
	case reflect.Struct:
		fields, _ := c.props.Fields(rv.Interface())
		if len(fields) == 0 {
			if s, ok := rv.Interface().(fmt.Stringer); ok {
				return cty.StringVal(s.String()), nil
			}
		}
		attrs := make(map[string]cty.Value, len(fields))
		for k, elem := range fields {
			cv, err := c.ToCtyValue(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in field '%s': %w", k, err)
			}
			attrs[k] = cv
		}
		return objectVal(attrs), nil
	}

	// Fall back to gocty for anything it can imply a type for.
	if !rv.IsValid() {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	v := rv.Interface()
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type for %T: %w", v, err)
	}
	return gocty.ToCtyValue(v, ty)
}

func (c *Converter) tuple(rv reflect.Value) (cty.Value, error) {
	if rv.Len() == 0 {
		return cty.EmptyTupleVal, nil
	}
	elems := make([]cty.Value, rv.Len())
	for i := range elems {
		cv, err := c.ToCtyValue(rv.Index(i).Interface())
		if err != nil {
			return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
		}
		elems[i] = cv
	}
	return cty.TupleVal(elems), nil
}

func objectVal(attrs map[string]cty.Value) cty.Value {
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

func floatVal(f float64) (cty.Value, error) {
	if math.IsNaN(f) {
		return cty.NilVal, fmt.Errorf("NaN is not representable")
	}
	return cty.NumberFloatVal(f), nil
}

// ToNative recursively converts a cty.Value to its most natural Go counterpart.
// Whole numbers that fit become int, other numbers float64. Null and unknown
// values become nil.
func (c *Converter) ToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact && i >= math.MinInt && i <= math.MaxInt {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			nativeVal, err := c.ToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nativeVal)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			keyStr := key.AsString()
			nativeVal, err := c.ToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", keyStr, err)
			}
			goMap[keyStr] = nativeVal
		}
		return goMap, nil

	default:
		return nil, fmt.Errorf("unsupported cty type for native conversion: %s", ty.FriendlyName())
	}
}
