package reflection

import (
	"reflect"
	"sync"
)

// Array is the uniform view over list-shaped containers. Implementations are
// stateless; the container instance is passed to every call as this, which
// must hold the container or a pointer to it. Mutating calls need a writable
// pointer.
type Array interface {
	// ElementTypeInfo returns the element type.
	ElementTypeInfo() *TypeInfo
	// CanResize reports whether TryResize can change the length.
	CanResize() bool
	// TryGetSize returns the current element count.
	TryGetSize(this WeakAny) (int, bool)
	// TryResize grows or shrinks the container to size elements. Existing
	// elements are kept up to the new length. Fixed-size containers only
	// succeed when size matches their length.
	TryResize(this WeakAny, size int) bool
	// TryGet copies element i out of the container.
	TryGet(this WeakAny, i int) (Any, bool)
	// TrySet coerces v to the element type and stores it at index i.
	TrySet(this WeakAny, i int, v Any) bool
	// TryGetElementPtr returns a mutable in-place view of element i.
	TryGetElementPtr(this WeakAny, i int) (WeakAny, bool)
	// TryGetElementConstPtr returns a read-only in-place view of element i.
	TryGetElementConstPtr(this WeakAny, i int) (WeakAny, bool)
}

var arrayAdapters = struct {
	sync.RWMutex
	m map[*TypeInfo]Array
}{m: make(map[*TypeInfo]Array)}

// arrayFor derives (and caches) the Array adapter for ti. Registered types
// may carry a custom adapter, which wins over derivation. Returns false when
// ti is not list-shaped.
func arrayFor(ti *TypeInfo) (Array, bool) {
	arrayAdapters.RLock()
	a, ok := arrayAdapters.m[ti]
	arrayAdapters.RUnlock()
	if ok {
		return a, a != nil
	}

	a = deriveArray(ti)
	arrayAdapters.Lock()
	if cached, ok := arrayAdapters.m[ti]; ok {
		a = cached
	} else {
		arrayAdapters.m[ti] = a
	}
	arrayAdapters.Unlock()
	return a, a != nil
}

func deriveArray(ti *TypeInfo) Array {
	if t := typeByInfo(ti); t != nil && t.arrayAdapter != nil {
		return t.arrayAdapter
	}
	rt := ti.GoType()
	switch rt.Kind() {
	case reflect.Slice:
		return &sliceArray{container: rt, elem: TypeInfoFor(rt.Elem())}
	case reflect.Array:
		return &fixedArray{container: rt, elem: TypeInfoFor(rt.Elem()), size: rt.Len()}
	default:
		return nil
	}
}

// sliceArray adapts []E.
type sliceArray struct {
	container reflect.Type
	elem      *TypeInfo
}

func (a *sliceArray) ElementTypeInfo() *TypeInfo { return a.elem }
func (a *sliceArray) CanResize() bool            { return true }

func (a *sliceArray) TryGetSize(this WeakAny) (int, bool) {
	v, _, ok := derefAs(this, a.container)
	if !ok {
		return 0, false
	}
	return v.Len(), true
}

func (a *sliceArray) TryResize(this WeakAny, size int) bool {
	v, writable, ok := derefAs(this, a.container)
	if !ok || !writable || !v.CanSet() || size < 0 {
		return false
	}
	if size == v.Len() {
		return true
	}
	ns := reflect.MakeSlice(a.container, size, size)
	reflect.Copy(ns, v)
	v.Set(ns)
	return true
}

func (a *sliceArray) TryGet(this WeakAny, i int) (Any, bool) {
	v, _, ok := derefAs(this, a.container)
	if !ok || i < 0 || i >= v.Len() {
		return Any{}, false
	}
	out := newAnyOfType(a.elem)
	out.rv.Set(v.Index(i))
	return out, true
}

func (a *sliceArray) TrySet(this WeakAny, i int, val Any) bool {
	v, writable, ok := derefAs(this, a.container)
	if !ok || !writable || i < 0 || i >= v.Len() {
		return false
	}
	return assignAny(val, v.Index(i))
}

func (a *sliceArray) TryGetElementPtr(this WeakAny, i int) (WeakAny, bool) {
	v, writable, ok := derefAs(this, a.container)
	if !ok || !writable || i < 0 || i >= v.Len() {
		return WeakAny{}, false
	}
	return weakFromValue(v.Index(i).Addr(), false), true
}

func (a *sliceArray) TryGetElementConstPtr(this WeakAny, i int) (WeakAny, bool) {
	v, _, ok := derefAs(this, a.container)
	if !ok || i < 0 || i >= v.Len() {
		return WeakAny{}, false
	}
	// Slice elements are addressable through the backing array even when
	// the slice header itself is not.
	return weakFromValue(v.Index(i).Addr(), true), true
}

// fixedArray adapts [N]E. The length is part of the type, so resizing only
// succeeds as a no-op to the existing size.
type fixedArray struct {
	container reflect.Type
	elem      *TypeInfo
	size      int
}

func (a *fixedArray) ElementTypeInfo() *TypeInfo { return a.elem }
func (a *fixedArray) CanResize() bool            { return false }

func (a *fixedArray) TryGetSize(this WeakAny) (int, bool) {
	if _, _, ok := derefAs(this, a.container); !ok {
		return 0, false
	}
	return a.size, true
}

func (a *fixedArray) TryResize(this WeakAny, size int) bool {
	_, _, ok := derefAs(this, a.container)
	return ok && size == a.size
}

func (a *fixedArray) TryGet(this WeakAny, i int) (Any, bool) {
	v, _, ok := derefAs(this, a.container)
	if !ok || i < 0 || i >= a.size {
		return Any{}, false
	}
	out := newAnyOfType(a.elem)
	out.rv.Set(v.Index(i))
	return out, true
}

func (a *fixedArray) TrySet(this WeakAny, i int, val Any) bool {
	v, writable, ok := derefAs(this, a.container)
	if !ok || !writable || i < 0 || i >= a.size {
		return false
	}
	return assignAny(val, v.Index(i))
}

func (a *fixedArray) TryGetElementPtr(this WeakAny, i int) (WeakAny, bool) {
	v, writable, ok := derefAs(this, a.container)
	if !ok || !writable || i < 0 || i >= a.size {
		return WeakAny{}, false
	}
	return weakFromValue(v.Index(i).Addr(), false), true
}

func (a *fixedArray) TryGetElementConstPtr(this WeakAny, i int) (WeakAny, bool) {
	v, _, ok := derefAs(this, a.container)
	if !ok || i < 0 || i >= a.size || !v.CanAddr() {
		return WeakAny{}, false
	}
	return weakFromValue(v.Index(i).Addr(), true), true
}
