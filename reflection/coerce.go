package reflection

import (
	"math"
	"reflect"
)

// TypeConstruct builds a T from a dynamically typed value, applying the
// standard coercions: checked numeric widening/narrowing, enum name↔value,
// string kinds, and interface assignment. Fails closed.
func TypeConstruct[T any](src Any) (T, bool) {
	var zero T
	if !src.IsValid() {
		return zero, false
	}
	out, ok := coerceValue(src.rv, reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return zero, false
	}
	return out.Interface().(T), true
}

// assignAny coerces a into dst's type and assigns it. dst must be settable.
func assignAny(a Any, dst reflect.Value) bool {
	if !a.IsValid() || !dst.CanSet() {
		return false
	}
	v, ok := coerceValue(a.rv, dst.Type())
	if !ok {
		return false
	}
	dst.Set(v)
	return true
}

// coerceValue converts src to type dst. Returns the converted value, which
// may alias src when no conversion was needed.
func coerceValue(src reflect.Value, dst reflect.Type) (reflect.Value, bool) {
	if !src.IsValid() || dst == nil {
		return reflect.Value{}, false
	}
	st := src.Type()
	if st == dst {
		return src, true
	}

	srcKind := TypeInfoFor(st).SimpleKind()
	dstKind := TypeInfoFor(dst).SimpleKind()

	// Enum name <-> value.
	if dstKind == EnumKind && srcKind == StringKind {
		if e := enumFor(TypeInfoFor(dst)); e != nil {
			if v, ok := e.TryGetValue(src.String()); ok {
				return integerValue(dst, v)
			}
		}
		return reflect.Value{}, false
	}
	if srcKind == EnumKind && dstKind == StringKind {
		if e := enumFor(TypeInfoFor(st)); e != nil {
			if name, ok := e.TryGetName(enumRawValue(src)); ok {
				out := reflect.New(dst).Elem()
				out.SetString(name)
				return out, true
			}
		}
		return reflect.Value{}, false
	}

	// Numeric kinds, including enums by value.
	if isNumericKind(srcKind) && isNumericKind(dstKind) {
		return coerceNumeric(src, dst)
	}

	// Distinct named string or bool types.
	if srcKind == StringKind && dstKind == StringKind {
		return src.Convert(dst), true
	}
	if srcKind == BoolKind && dstKind == BoolKind {
		return src.Convert(dst), true
	}

	// Interface satisfaction and identical named types.
	if st.AssignableTo(dst) {
		return src, true
	}
	return reflect.Value{}, false
}

func isNumericKind(k SimpleKind) bool {
	return k.IsIntegral() || k.IsFloat() || k == EnumKind
}

// enumRawValue reads an enum-typed value as int64 regardless of the
// underlying integer width or signedness.
func enumRawValue(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	default:
		return v.Int()
	}
}

func integerValue(dst reflect.Type, v int64) (reflect.Value, bool) {
	out := reflect.New(dst).Elem()
	switch dst.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v < 0 || out.OverflowUint(uint64(v)) {
			return reflect.Value{}, false
		}
		out.SetUint(uint64(v))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if out.OverflowInt(v) {
			return reflect.Value{}, false
		}
		out.SetInt(v)
	default:
		return reflect.Value{}, false
	}
	return out, true
}

// coerceNumeric performs checked numeric conversion: narrowing that would
// change the value fails, as do sign violations and fractional-to-integer
// conversions.
func coerceNumeric(src reflect.Value, dst reflect.Type) (reflect.Value, bool) {
	out := reflect.New(dst).Elem()
	switch src.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numericFromInt(out, src.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return numericFromUint(out, src.Uint())
	case reflect.Float32, reflect.Float64:
		return numericFromFloat(out, src.Float())
	default:
		return reflect.Value{}, false
	}
}

func numericFromInt(out reflect.Value, v int64) (reflect.Value, bool) {
	switch out.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if out.OverflowInt(v) {
			return reflect.Value{}, false
		}
		out.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v < 0 || out.OverflowUint(uint64(v)) {
			return reflect.Value{}, false
		}
		out.SetUint(uint64(v))
	case reflect.Float32, reflect.Float64:
		out.SetFloat(float64(v))
	default:
		return reflect.Value{}, false
	}
	return out, true
}

func numericFromUint(out reflect.Value, v uint64) (reflect.Value, bool) {
	switch out.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v > math.MaxInt64 || out.OverflowInt(int64(v)) {
			return reflect.Value{}, false
		}
		out.SetInt(int64(v))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if out.OverflowUint(v) {
			return reflect.Value{}, false
		}
		out.SetUint(v)
	case reflect.Float32, reflect.Float64:
		out.SetFloat(float64(v))
	default:
		return reflect.Value{}, false
	}
	return out, true
}

func numericFromFloat(out reflect.Value, v float64) (reflect.Value, bool) {
	switch out.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= 1<<63 {
			return reflect.Value{}, false
		}
		if out.OverflowInt(int64(v)) {
			return reflect.Value{}, false
		}
		out.SetInt(int64(v))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v != math.Trunc(v) || v < 0 || v >= 1<<64 {
			return reflect.Value{}, false
		}
		if out.OverflowUint(uint64(v)) {
			return reflect.Value{}, false
		}
		out.SetUint(uint64(v))
	case reflect.Float32, reflect.Float64:
		if out.OverflowFloat(v) {
			return reflect.Value{}, false
		}
		out.SetFloat(v)
	default:
		return reflect.Value{}, false
	}
	return out, true
}
