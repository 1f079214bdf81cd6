package reflection

import "reflect"

// WeakAny is a non-owning, dynamically typed reference: a (TypeInfo, value)
// pair built on reflect. It never copies the referent; lifetime is the
// referent's. A read-only WeakAny refuses all mutation paths.
type WeakAny struct {
	ti       *TypeInfo
	rv       reflect.Value
	readonly bool
}

// NewWeakAny wraps v, which is typically a pointer to the value of interest.
func NewWeakAny(v any) WeakAny {
	if v == nil {
		return WeakAny{}
	}
	rv := reflect.ValueOf(v)
	return WeakAny{ti: TypeInfoFor(rv.Type()), rv: rv}
}

// WeakPtr wraps a typed pointer.
func WeakPtr[T any](p *T) WeakAny {
	if p == nil {
		return WeakAny{}
	}
	return WeakAny{ti: TypeInfoOf[*T](), rv: reflect.ValueOf(p)}
}

func weakFromValue(rv reflect.Value, readonly bool) WeakAny {
	if !rv.IsValid() {
		return WeakAny{}
	}
	return WeakAny{ti: TypeInfoFor(rv.Type()), rv: rv, readonly: readonly}
}

// IsValid reports whether the reference holds anything.
func (w WeakAny) IsValid() bool { return w.ti != nil && w.rv.IsValid() }

// IsReadOnly reports whether mutation through this reference is refused.
func (w WeakAny) IsReadOnly() bool { return w.readonly }

// AsReadOnly returns a read-only view of the same referent.
func (w WeakAny) AsReadOnly() WeakAny {
	w.readonly = true
	return w
}

// TypeInfo returns the TypeInfo of the stored value (the pointer type when a
// pointer is stored), or nil when invalid.
func (w WeakAny) TypeInfo() *TypeInfo { return w.ti }

// Interface returns the stored value as an interface, or nil when invalid.
func (w WeakAny) Interface() any {
	if !w.IsValid() {
		return nil
	}
	return w.rv.Interface()
}

// PointerTo extracts the stored pointer when the reference holds exactly a
// *T. Fails closed on any mismatch and on read-only references.
func PointerTo[T any](w WeakAny) (*T, bool) {
	if !w.IsValid() || w.readonly || w.ti != TypeInfoOf[*T]() {
		return nil, false
	}
	return w.rv.Interface().(*T), true
}

// ConstPointerTo extracts the stored pointer for reading. Unlike PointerTo
// it accepts read-only references; the caller must not mutate through it.
func ConstPointerTo[T any](w WeakAny) (*T, bool) {
	if !w.IsValid() || w.ti != TypeInfoOf[*T]() {
		return nil, false
	}
	return w.rv.Interface().(*T), true
}

// ValueTo reads the stored value when the reference holds exactly a T.
func ValueTo[T any](w WeakAny) (T, bool) {
	var zero T
	if !w.IsValid() || w.ti != TypeInfoOf[T]() {
		return zero, false
	}
	return w.rv.Interface().(T), true
}

// pointee resolves the value referred to by a stored non-nil pointer.
func (w WeakAny) pointee() (reflect.Value, bool) {
	if !w.IsValid() || w.rv.Kind() != reflect.Pointer || w.rv.IsNil() {
		return reflect.Value{}, false
	}
	return w.rv.Elem(), true
}

// Any is an owning, dynamically typed value: it holds its own addressable
// copy of the value plus its TypeInfo.
type Any struct {
	ti *TypeInfo
	rv reflect.Value // addressable storage, or invalid
}

// NewAny copies v into fresh owned storage.
func NewAny(v any) Any {
	if v == nil {
		return Any{}
	}
	src := reflect.ValueOf(v)
	store := reflect.New(src.Type()).Elem()
	store.Set(src)
	return Any{ti: TypeInfoFor(src.Type()), rv: store}
}

// AnyOf copies a typed value into fresh owned storage.
func AnyOf[T any](v T) Any {
	store := reflect.New(reflect.TypeOf((*T)(nil)).Elem()).Elem()
	store.Set(reflect.ValueOf(v))
	return Any{ti: TypeInfoOf[T](), rv: store}
}

// newAnyOfType returns an Any owning zero-valued storage of the given type.
func newAnyOfType(ti *TypeInfo) Any {
	return Any{ti: ti, rv: reflect.New(ti.GoType()).Elem()}
}

// IsValid reports whether the Any holds a value.
func (a Any) IsValid() bool { return a.ti != nil && a.rv.IsValid() }

// TypeInfo returns the TypeInfo of the held value, or nil when invalid.
func (a Any) TypeInfo() *TypeInfo { return a.ti }

// Interface returns a copy of the held value as an interface.
func (a Any) Interface() any {
	if !a.IsValid() {
		return nil
	}
	return a.rv.Interface()
}

// Reset clears the Any back to the invalid state.
func (a *Any) Reset() {
	a.ti = nil
	a.rv = reflect.Value{}
}

// WeakRef returns a WeakAny pointing at the Any's owned storage. The
// reference is valid only while the Any is alive.
func (a Any) WeakRef() WeakAny {
	if !a.IsValid() {
		return WeakAny{}
	}
	return weakFromValue(a.rv.Addr(), false)
}

// AnyValueTo reads the held value when it is exactly a T.
func AnyValueTo[T any](a Any) (T, bool) {
	var zero T
	if !a.IsValid() || a.ti != TypeInfoOf[T]() {
		return zero, false
	}
	return a.rv.Interface().(T), true
}

// derefAs unwraps w to a value of type rt, following at most one pointer
// level. The second result reports whether the value may be mutated
// through w.
func derefAs(w WeakAny, rt reflect.Type) (reflect.Value, bool, bool) {
	if !w.IsValid() {
		return reflect.Value{}, false, false
	}
	v := w.rv
	if v.Kind() == reflect.Pointer && v.Type().Elem() == rt {
		if v.IsNil() {
			return reflect.Value{}, false, false
		}
		return v.Elem(), !w.readonly, true
	}
	if v.Type() == rt {
		return v, v.CanSet() && !w.readonly, true
	}
	return reflect.Value{}, false, false
}
