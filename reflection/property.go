package reflection

import "reflect"

// Property describes one named member of a registered type: a struct field,
// a computed accessor pair, or a package-level static. Capabilities are fixed
// when the property is built, so callers can branch on CanGetPtr and friends
// without probing.
type Property struct {
	name   string
	ti     *TypeInfo // member type
	owner  *TypeInfo // declaring type
	attrs  *AttributeCollection
	static bool

	get      func(self WeakAny) (Any, bool)
	set      func(self WeakAny, v Any) bool
	ptr      func(self WeakAny) (WeakAny, bool)
	constPtr func(self WeakAny) (WeakAny, bool)
}

func (p *Property) Name() string                    { return p.name }
func (p *Property) TypeInfo() *TypeInfo             { return p.ti }
func (p *Property) Owner() *TypeInfo                { return p.owner }
func (p *Property) Attributes() *AttributeCollection { return p.attrs }

func (p *Property) IsStatic() bool       { return p.static }
func (p *Property) CanRead() bool        { return p.get != nil }
func (p *Property) CanWrite() bool       { return p.set != nil }
func (p *Property) CanGetPtr() bool      { return p.ptr != nil }
func (p *Property) CanGetConstPtr() bool { return p.constPtr != nil }

// TryGet reads the property from self into a freshly allocated Any.
// Static properties ignore self.
func (p *Property) TryGet(self WeakAny) (Any, bool) {
	if p.get == nil {
		return Any{}, false
	}
	return p.get(self)
}

// TrySet coerces v to the member type and writes it. Fails when self is a
// read-only view or v cannot be coerced.
func (p *Property) TrySet(self WeakAny, v Any) bool {
	if p.set == nil {
		return false
	}
	return p.set(self, v)
}

// TryGetPtr returns a mutable pointer view of the member in place. Only
// field-backed and static properties support this, and only through a
// writable self.
func (p *Property) TryGetPtr(self WeakAny) (WeakAny, bool) {
	if p.ptr == nil {
		return WeakAny{}, false
	}
	return p.ptr(self)
}

// TryGetConstPtr returns a read-only pointer view of the member in place.
func (p *Property) TryGetConstPtr(self WeakAny) (WeakAny, bool) {
	if p.constPtr == nil {
		return WeakAny{}, false
	}
	return p.constPtr(self)
}

// rebind produces a copy of p whose accessors first cast self with cast.
// Used when a parent's property is surfaced on a child type. The declaring
// owner is kept.
func (p *Property) rebind(cast func(WeakAny) (WeakAny, bool)) *Property {
	if p.static {
		return p
	}
	q := *p
	if g := p.get; g != nil {
		q.get = func(self WeakAny) (Any, bool) {
			s, ok := cast(self)
			if !ok {
				return Any{}, false
			}
			return g(s)
		}
	}
	if s0 := p.set; s0 != nil {
		q.set = func(self WeakAny, v Any) bool {
			s, ok := cast(self)
			if !ok {
				return false
			}
			return s0(s, v)
		}
	}
	if pf := p.ptr; pf != nil {
		q.ptr = func(self WeakAny) (WeakAny, bool) {
			s, ok := cast(self)
			if !ok {
				return WeakAny{}, false
			}
			return pf(s)
		}
	}
	if cf := p.constPtr; cf != nil {
		q.constPtr = func(self WeakAny) (WeakAny, bool) {
			s, ok := cast(self)
			if !ok {
				return WeakAny{}, false
			}
			return cf(s)
		}
	}
	return &q
}

// newFieldProperty builds a property over the struct field at index path idx
// of owner's Go type.
func newFieldProperty(owner *TypeInfo, name string, idx []int, attrs []Attribute) *Property {
	rt := owner.GoType()
	ft := rt.FieldByIndex(idx).Type
	fti := TypeInfoFor(ft)
	p := &Property{
		name:  name,
		ti:    fti,
		owner: owner,
	}
	p.attrs = newAttributeCollection(attrs)
	p.get = func(self WeakAny) (Any, bool) {
		sv, _, ok := derefAs(self, rt)
		if !ok {
			return Any{}, false
		}
		out := newAnyOfType(fti)
		out.rv.Set(sv.FieldByIndex(idx))
		return out, true
	}
	p.set = func(self WeakAny, v Any) bool {
		sv, writable, ok := derefAs(self, rt)
		if !ok || !writable {
			return false
		}
		return assignAny(v, sv.FieldByIndex(idx))
	}
	p.ptr = func(self WeakAny) (WeakAny, bool) {
		sv, writable, ok := derefAs(self, rt)
		if !ok || !writable || !sv.CanAddr() {
			return WeakAny{}, false
		}
		return weakFromValue(sv.FieldByIndex(idx).Addr(), false), true
	}
	p.constPtr = func(self WeakAny) (WeakAny, bool) {
		sv, _, ok := derefAs(self, rt)
		if !ok || !sv.CanAddr() {
			return WeakAny{}, false
		}
		return weakFromValue(sv.FieldByIndex(idx).Addr(), true), true
	}
	return p
}

// newComputedProperty builds a property backed by accessor funcs. getter is
// required; setter may be nil for read-only properties. Pointer access is
// never available on computed properties.
func newComputedProperty(owner, member *TypeInfo, name string,
	get func(self WeakAny) (Any, bool),
	set func(self WeakAny, v Any) bool,
	attrs []Attribute,
) *Property {
	p := &Property{
		name:  name,
		ti:    member,
		owner: owner,
		get:   get,
		set:   set,
	}
	p.attrs = newAttributeCollection(attrs)
	return p
}

// newStaticProperty builds a property over a package-level variable. target
// must be a non-nil pointer to the variable.
func newStaticProperty(owner *TypeInfo, name string, target reflect.Value, attrs []Attribute) *Property {
	elem := target.Type().Elem()
	mti := TypeInfoFor(elem)
	p := &Property{
		name:   name,
		ti:     mti,
		owner:  owner,
		static: true,
	}
	p.attrs = newAttributeCollection(attrs)
	p.get = func(WeakAny) (Any, bool) {
		out := newAnyOfType(mti)
		out.rv.Set(target.Elem())
		return out, true
	}
	p.set = func(_ WeakAny, v Any) bool {
		return assignAny(v, target.Elem())
	}
	p.ptr = func(WeakAny) (WeakAny, bool) {
		return weakFromValue(target, false), true
	}
	p.constPtr = func(WeakAny) (WeakAny, bool) {
		return weakFromValue(target, true), true
	}
	return p
}
