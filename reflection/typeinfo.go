package reflection

import (
	"reflect"
	"sync"
)

// SimpleKind classifies a type for scalar coercion during serialization and
// argument binding. Aggregate types (structs, slices, maps, pointers,
// interfaces) are ComplexKind; registered enum types report EnumKind.
type SimpleKind uint8

const (
	ComplexKind SimpleKind = iota
	BoolKind
	Int8Kind
	Int16Kind
	Int32Kind
	Int64Kind
	Uint8Kind
	Uint16Kind
	Uint32Kind
	Uint64Kind
	Float32Kind
	Float64Kind
	StringKind
	EnumKind
)

var simpleKindNames = [...]string{
	ComplexKind: "complex",
	BoolKind:    "bool",
	Int8Kind:    "int8",
	Int16Kind:   "int16",
	Int32Kind:   "int32",
	Int64Kind:   "int64",
	Uint8Kind:   "uint8",
	Uint16Kind:  "uint16",
	Uint32Kind:  "uint32",
	Uint64Kind:  "uint64",
	Float32Kind: "float32",
	Float64Kind: "float64",
	StringKind:  "string",
	EnumKind:    "enum",
}

func (k SimpleKind) String() string {
	if int(k) < len(simpleKindNames) {
		return simpleKindNames[k]
	}
	return "unknown"
}

// IsIntegral reports whether the kind is a signed or unsigned integer kind.
func (k SimpleKind) IsIntegral() bool {
	return k >= Int8Kind && k <= Uint64Kind
}

// IsSigned reports whether the kind is a signed integer kind.
func (k SimpleKind) IsSigned() bool {
	return k >= Int8Kind && k <= Int64Kind
}

// IsUnsigned reports whether the kind is an unsigned integer kind.
func (k SimpleKind) IsUnsigned() bool {
	return k >= Uint8Kind && k <= Uint64Kind
}

// IsFloat reports whether the kind is a floating-point kind.
func (k SimpleKind) IsFloat() bool {
	return k == Float32Kind || k == Float64Kind
}

// TypeInfo identifies one concrete Go type. Exactly one *TypeInfo exists per
// reflect.Type, so identity comparison is pointer equality.
type TypeInfo struct {
	rt     reflect.Type
	simple SimpleKind
}

var typeInfos = struct {
	sync.RWMutex
	byType map[reflect.Type]*TypeInfo
}{byType: make(map[reflect.Type]*TypeInfo)}

// TypeInfoOf returns the interned TypeInfo for T.
func TypeInfoOf[T any]() *TypeInfo {
	return TypeInfoFor(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeInfoFor returns the interned TypeInfo for rt.
func TypeInfoFor(rt reflect.Type) *TypeInfo {
	if rt == nil {
		return nil
	}
	typeInfos.RLock()
	ti := typeInfos.byType[rt]
	typeInfos.RUnlock()
	if ti != nil {
		return ti
	}

	typeInfos.Lock()
	defer typeInfos.Unlock()
	if ti = typeInfos.byType[rt]; ti != nil {
		return ti
	}
	ti = &TypeInfo{rt: rt, simple: classify(rt)}
	typeInfos.byType[rt] = ti
	return ti
}

func classify(rt reflect.Type) SimpleKind {
	switch rt.Kind() {
	case reflect.Bool:
		return BoolKind
	case reflect.Int8:
		return Int8Kind
	case reflect.Int16:
		return Int16Kind
	case reflect.Int32:
		return Int32Kind
	case reflect.Int64:
		return Int64Kind
	case reflect.Int:
		// int is 64-bit on all supported platforms.
		return Int64Kind
	case reflect.Uint8:
		return Uint8Kind
	case reflect.Uint16:
		return Uint16Kind
	case reflect.Uint32:
		return Uint32Kind
	case reflect.Uint64:
		return Uint64Kind
	case reflect.Uint:
		return Uint64Kind
	case reflect.Float32:
		return Float32Kind
	case reflect.Float64:
		return Float64Kind
	case reflect.String:
		return StringKind
	default:
		return ComplexKind
	}
}

// markEnum upgrades the classification of an enum type's TypeInfo. Called by
// enum registration, before any serialization uses the type.
func (ti *TypeInfo) markEnum() {
	ti.simple = EnumKind
}

// unmarkEnum restores the derived classification. Only Reset uses it.
func (ti *TypeInfo) unmarkEnum() {
	ti.simple = classify(ti.rt)
}

// GoType returns the underlying reflect.Type.
func (ti *TypeInfo) GoType() reflect.Type { return ti.rt }

// SimpleKind returns the scalar classification.
func (ti *TypeInfo) SimpleKind() SimpleKind {
	if ti == nil {
		return ComplexKind
	}
	return ti.simple
}

// Name returns the Go spelling of the type, e.g. "int32" or "*demo.Widget".
func (ti *TypeInfo) Name() string {
	if ti == nil {
		return "<nil>"
	}
	return ti.rt.String()
}

func (ti *TypeInfo) String() string { return ti.Name() }

// IsPointer reports whether the type is a pointer type.
func (ti *TypeInfo) IsPointer() bool { return ti != nil && ti.rt.Kind() == reflect.Pointer }

// IsInterface reports whether the type is an interface type.
func (ti *TypeInfo) IsInterface() bool { return ti != nil && ti.rt.Kind() == reflect.Interface }

// Elem returns the TypeInfo of the pointed-to or element type for pointers,
// slices, and arrays, or nil otherwise.
func (ti *TypeInfo) Elem() *TypeInfo {
	if ti == nil {
		return nil
	}
	switch ti.rt.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return TypeInfoFor(ti.rt.Elem())
	default:
		return nil
	}
}

// Type resolves the registered Type for this TypeInfo, or nil when the type
// was never registered. Pointer TypeInfos resolve through their pointee.
func (ti *TypeInfo) Type() *Type {
	if ti == nil {
		return nil
	}
	if t := typeByInfo(ti); t != nil {
		return t
	}
	if ti.rt.Kind() == reflect.Pointer {
		return typeByInfo(TypeInfoFor(ti.rt.Elem()))
	}
	return nil
}
