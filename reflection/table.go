package reflection

import (
	"reflect"
	"sort"
	"strconv"
	"sync"
)

// Table is the uniform view over keyed containers. Like Array, the container
// instance is passed to every call; mutating calls need a writable pointer.
// Keys convert to and from strings so tables can round-trip through keyed
// data trees.
type Table interface {
	KeyTypeInfo() *TypeInfo
	ValueTypeInfo() *TypeInfo
	// CanGetValuePtr reports whether TryGetValuePtr can hand out in-place
	// views. Only pointer-valued containers support them.
	CanGetValuePtr() bool
	// CanErase reports whether entries can be removed individually.
	CanErase() bool

	TryGetSize(this WeakAny) (int, bool)
	// TryClear removes all entries.
	TryClear(this WeakAny) bool
	// TryGetValue copies the value stored under key.
	TryGetValue(this WeakAny, key Any) (Any, bool)
	// TryGetValuePtr returns a mutable in-place view of the value under
	// key. With insert set, a missing entry is created first.
	TryGetValuePtr(this WeakAny, key Any, insert bool) (WeakAny, bool)
	// TryOverwrite stores value under key, replacing any existing entry.
	TryOverwrite(this WeakAny, key Any, value Any) bool
	// TryErase removes the entry under key. Removing a missing key fails.
	TryErase(this WeakAny, key Any) bool
	// ForEach visits entries ordered by the string form of their keys.
	// The value view is read-only; fn returning false stops the walk.
	ForEach(this WeakAny, fn func(key Any, value WeakAny) bool) bool

	// TryConstructKey builds a key from its string form: verbatim for
	// string keys, parsed for integer keys, by name for enum keys.
	TryConstructKey(s string) (Any, bool)
	// TryKeyString renders a key to its string form.
	TryKeyString(key Any) (string, bool)
}

var tableAdapters = struct {
	sync.RWMutex
	m map[*TypeInfo]Table
}{m: make(map[*TypeInfo]Table)}

// tableFor derives (and caches) the Table adapter for ti. Registered types
// may carry a custom adapter, which wins over derivation. Returns false when
// ti is not a keyed container with stringable keys.
func tableFor(ti *TypeInfo) (Table, bool) {
	tableAdapters.RLock()
	t, ok := tableAdapters.m[ti]
	tableAdapters.RUnlock()
	if ok {
		return t, t != nil
	}

	t = deriveTable(ti)
	tableAdapters.Lock()
	if cached, ok := tableAdapters.m[ti]; ok {
		t = cached
	} else {
		tableAdapters.m[ti] = t
	}
	tableAdapters.Unlock()
	return t, t != nil
}

func deriveTable(ti *TypeInfo) Table {
	if t := typeByInfo(ti); t != nil && t.tableAdapter != nil {
		return t.tableAdapter
	}
	rt := ti.GoType()
	if rt.Kind() != reflect.Map {
		return nil
	}
	kti := TypeInfoFor(rt.Key())
	switch k := kti.SimpleKind(); {
	case k == StringKind, k.IsIntegral(), k == EnumKind:
	default:
		return nil
	}
	return &mapTable{
		container: rt,
		key:       kti,
		val:       TypeInfoFor(rt.Elem()),
		ptrValues: rt.Elem().Kind() == reflect.Pointer,
	}
}

// mapTable adapts map[K]V. In-place value views exist only when V is a
// pointer type; other value types are staged through copies by callers.
type mapTable struct {
	container reflect.Type
	key       *TypeInfo
	val       *TypeInfo
	ptrValues bool
}

func (t *mapTable) KeyTypeInfo() *TypeInfo   { return t.key }
func (t *mapTable) ValueTypeInfo() *TypeInfo { return t.val }
func (t *mapTable) CanGetValuePtr() bool     { return t.ptrValues }
func (t *mapTable) CanErase() bool           { return true }

func (t *mapTable) TryGetSize(this WeakAny) (int, bool) {
	v, _, ok := derefAs(this, t.container)
	if !ok {
		return 0, false
	}
	if v.IsNil() {
		return 0, true
	}
	return v.Len(), true
}

func (t *mapTable) TryClear(this WeakAny) bool {
	v, writable, ok := derefAs(this, t.container)
	if !ok || !writable {
		return false
	}
	if v.IsNil() {
		return true
	}
	for _, k := range v.MapKeys() {
		v.SetMapIndex(k, reflect.Value{})
	}
	return true
}

func (t *mapTable) TryGetValue(this WeakAny, key Any) (Any, bool) {
	v, _, ok := derefAs(this, t.container)
	if !ok || v.IsNil() {
		return Any{}, false
	}
	k, kok := t.keyValue(key)
	if !kok {
		return Any{}, false
	}
	mv := v.MapIndex(k)
	if !mv.IsValid() {
		return Any{}, false
	}
	out := newAnyOfType(t.val)
	out.rv.Set(mv)
	return out, true
}

func (t *mapTable) TryGetValuePtr(this WeakAny, key Any, insert bool) (WeakAny, bool) {
	if !t.ptrValues {
		return WeakAny{}, false
	}
	v, writable, ok := derefAs(this, t.container)
	if !ok || !writable {
		return WeakAny{}, false
	}
	k, kok := t.keyValue(key)
	if !kok {
		return WeakAny{}, false
	}
	if v.IsNil() {
		if !insert || !v.CanSet() {
			return WeakAny{}, false
		}
		v.Set(reflect.MakeMap(t.container))
	}
	mv := v.MapIndex(k)
	if !mv.IsValid() || mv.IsNil() {
		if !insert {
			return WeakAny{}, false
		}
		mv = reflect.New(t.container.Elem().Elem())
		v.SetMapIndex(k, mv)
	}
	return weakFromValue(mv, false), true
}

func (t *mapTable) TryOverwrite(this WeakAny, key Any, value Any) bool {
	v, writable, ok := derefAs(this, t.container)
	if !ok || !writable {
		return false
	}
	k, kok := t.keyValue(key)
	if !kok || !value.IsValid() {
		return false
	}
	mv, vok := coerceValue(value.rv, t.container.Elem())
	if !vok {
		return false
	}
	if v.IsNil() {
		if !v.CanSet() {
			return false
		}
		v.Set(reflect.MakeMap(t.container))
	}
	v.SetMapIndex(k, mv)
	return true
}

func (t *mapTable) TryErase(this WeakAny, key Any) bool {
	v, writable, ok := derefAs(this, t.container)
	if !ok || !writable || v.IsNil() {
		return false
	}
	k, kok := t.keyValue(key)
	if !kok || !v.MapIndex(k).IsValid() {
		return false
	}
	v.SetMapIndex(k, reflect.Value{})
	return true
}

func (t *mapTable) ForEach(this WeakAny, fn func(key Any, value WeakAny) bool) bool {
	v, _, ok := derefAs(this, t.container)
	if !ok {
		return false
	}
	if v.IsNil() {
		return true
	}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		a, _ := tableKeyString(t.key, keys[i])
		b, _ := tableKeyString(t.key, keys[j])
		return a < b
	})
	for _, k := range keys {
		mv := v.MapIndex(k)
		if !mv.IsValid() {
			continue
		}
		ka := newAnyOfType(t.key)
		ka.rv.Set(k)
		// Map slots are not addressable, so the view is a read-only copy.
		tmp := newAnyOfType(t.val)
		tmp.rv.Set(mv)
		if !fn(ka, tmp.WeakRef().AsReadOnly()) {
			return false
		}
	}
	return true
}

func (t *mapTable) TryConstructKey(s string) (Any, bool) {
	return constructTableKey(t.key, s)
}

func (t *mapTable) TryKeyString(key Any) (string, bool) {
	k, ok := t.keyValue(key)
	if !ok {
		return "", false
	}
	return tableKeyString(t.key, k)
}

func (t *mapTable) keyValue(key Any) (reflect.Value, bool) {
	if !key.IsValid() {
		return reflect.Value{}, false
	}
	return coerceValue(key.rv, t.container.Key())
}

// constructTableKey builds a key value of type kti from its string form.
func constructTableKey(kti *TypeInfo, s string) (Any, bool) {
	rt := kti.GoType()
	switch k := kti.SimpleKind(); {
	case k == StringKind:
		out := newAnyOfType(kti)
		out.rv.SetString(s)
		return out, true
	case k == EnumKind:
		e := enumFor(kti)
		if e == nil {
			return Any{}, false
		}
		v, ok := e.TryGetValue(s)
		if !ok {
			return Any{}, false
		}
		rv, rok := integerValue(rt, v)
		if !rok {
			return Any{}, false
		}
		out := newAnyOfType(kti)
		out.rv.Set(rv)
		return out, true
	case k.IsSigned():
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Any{}, false
		}
		rv, ok := integerValue(rt, n)
		if !ok {
			return Any{}, false
		}
		out := newAnyOfType(kti)
		out.rv.Set(rv)
		return out, true
	case k.IsUnsigned():
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Any{}, false
		}
		out := newAnyOfType(kti)
		if out.rv.OverflowUint(n) {
			return Any{}, false
		}
		out.rv.SetUint(n)
		return out, true
	default:
		return Any{}, false
	}
}

// tableKeyString renders a key value to its string form. Enum keys use their
// canonical name and fail when the value is unnamed.
func tableKeyString(kti *TypeInfo, k reflect.Value) (string, bool) {
	switch kind := kti.SimpleKind(); {
	case kind == StringKind:
		return k.String(), true
	case kind == EnumKind:
		e := enumFor(kti)
		if e == nil {
			return "", false
		}
		return e.TryGetName(enumRawValue(k))
	case kind.IsSigned():
		return strconv.FormatInt(k.Int(), 10), true
	case kind.IsUnsigned():
		return strconv.FormatUint(k.Uint(), 10), true
	default:
		return "", false
	}
}
