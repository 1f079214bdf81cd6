package reflection

// Parent links a registered type to one of its ancestors together with the
// upcast that reshapes a child view into a parent view. Downcasts are not
// provided.
type Parent struct {
	ti   *TypeInfo
	cast func(self WeakAny) (WeakAny, bool)
}

// TypeInfo returns the parent's type info.
func (p Parent) TypeInfo() *TypeInfo { return p.ti }

// typ resolves the parent's registered Type, or nil when the parent was
// never registered.
func (p Parent) typ() *Type { return typeByInfo(p.ti) }

// Type is the registered metadata node for one Go type: identity, attributes,
// parents, and the property and method sets. Inherited members are flattened
// at registration, with child members shadowing parent members of the same
// name.
type Type struct {
	name    string
	aliases []string
	ti      *TypeInfo
	attrs   *AttributeCollection
	parents []Parent

	properties []*Property // flattened, child-first
	ownProps   int         // properties[:ownProps] are declared on this type
	methods    []*Method
	propByName map[string]*Property
	methByName map[string]*Method

	enum         *Enum
	arrayAdapter Array
	tableAdapter Table
	scalar       ScalarHandler
	newFn        func() Any

	index int
}

func (t *Type) Name() string                     { return t.name }
func (t *Type) Aliases() []string                { return t.aliases }
func (t *Type) TypeInfo() *TypeInfo              { return t.ti }
func (t *Type) Attributes() *AttributeCollection { return t.attrs }

// RegistryIndex returns the type's position in registration order.
func (t *Type) RegistryIndex() int { return t.index }

// ParentCount returns the number of direct parents.
func (t *Type) ParentCount() int { return len(t.parents) }

// ParentAt returns the direct parent at index i.
func (t *Type) ParentAt(i int) Parent { return t.parents[i] }

// PropertyCount returns the number of properties, inherited included.
func (t *Type) PropertyCount() int { return len(t.properties) }

// PropertyAt returns the property at index i. Own properties come first,
// then each parent's in declaration order.
func (t *Type) PropertyAt(i int) *Property { return t.properties[i] }

// GetProperty finds a property by name, inherited included.
func (t *Type) GetProperty(name string) (*Property, bool) {
	p, ok := t.propByName[name]
	return p, ok
}

// MethodCount returns the number of methods, inherited included.
func (t *Type) MethodCount() int { return len(t.methods) }

// MethodAt returns the method at index i.
func (t *Type) MethodAt(i int) *Method { return t.methods[i] }

// GetMethod finds a method by name, inherited included.
func (t *Type) GetMethod(name string) (*Method, bool) {
	m, ok := t.methByName[name]
	return m, ok
}

// CanNew reports whether New can produce instances of this type.
func (t *Type) CanNew() bool { return t.newFn != nil }

// New returns a freshly constructed instance, owned by the returned Any.
func (t *Type) New() (Any, bool) {
	if t.newFn == nil {
		return Any{}, false
	}
	return t.newFn(), true
}

// IsA reports whether t is other or descends from it.
func (t *Type) IsA(other *Type) bool {
	return other != nil && (t == other || t.IsSubclassOf(other))
}

// IsSubclassOf reports whether other is a strict ancestor of t.
func (t *Type) IsSubclassOf(other *Type) bool {
	if other == nil {
		return false
	}
	for _, p := range t.parents {
		pt := p.typ()
		if pt == nil {
			continue
		}
		if pt == other || pt.IsSubclassOf(other) {
			return true
		}
	}
	return false
}

// CastTo reshapes self into a view of ancestor, composing upcasts along the
// parent chain. Fails when ancestor is not an ancestor of t.
func (t *Type) CastTo(self WeakAny, ancestor *Type) (WeakAny, bool) {
	if ancestor == nil {
		return WeakAny{}, false
	}
	if t == ancestor {
		return self, true
	}
	for _, p := range t.parents {
		pt := p.typ()
		if pt == nil {
			continue
		}
		up, ok := p.cast(self)
		if !ok {
			continue
		}
		if out, ok := pt.CastTo(up, ancestor); ok {
			return out, true
		}
	}
	return WeakAny{}, false
}

// TryGetEnum returns the enum metadata for enum types.
func (t *Type) TryGetEnum() (*Enum, bool) {
	return t.enum, t.enum != nil
}

// TryGetArray returns the list adapter when the type is list-shaped.
func (t *Type) TryGetArray() (Array, bool) { return arrayFor(t.ti) }

// TryGetTable returns the keyed adapter when the type is table-shaped.
func (t *Type) TryGetTable() (Table, bool) { return tableFor(t.ti) }

// ScalarHandler returns the custom scalar codec, if any.
func (t *Type) ScalarHandler() (ScalarHandler, bool) {
	return t.scalar, t.scalar != nil
}

// finalize flattens inherited members and builds the lookup maps. Called
// once while the registry write lock is held; resolve must look parents up
// without locking again.
func (t *Type) finalize(index int, resolve func(*TypeInfo) *Type) {
	t.index = index
	if t.attrs == nil {
		t.attrs = &AttributeCollection{}
	}
	t.attrs.owner = t

	own := t.properties
	t.ownProps = len(own)
	t.properties = make([]*Property, 0, len(own))
	t.propByName = make(map[string]*Property, len(own))
	for _, p := range own {
		t.properties = append(t.properties, p)
		t.propByName[p.name] = p
	}
	ownMethods := t.methods
	t.methods = make([]*Method, 0, len(ownMethods))
	t.methByName = make(map[string]*Method, len(ownMethods))
	for _, m := range ownMethods {
		t.methods = append(t.methods, m)
		t.methByName[m.name] = m
	}

	for _, par := range t.parents {
		pt := resolve(par.ti)
		if pt == nil {
			continue
		}
		cast := par.cast
		for _, pp := range pt.properties {
			if _, shadowed := t.propByName[pp.name]; shadowed {
				continue
			}
			rp := pp.rebind(cast)
			t.properties = append(t.properties, rp)
			t.propByName[rp.name] = rp
		}
		for _, pm := range pt.methods {
			if _, shadowed := t.methByName[pm.name]; shadowed {
				continue
			}
			rm := pm.rebind(cast)
			t.methods = append(t.methods, rm)
			t.methByName[rm.name] = rm
		}
	}
}
