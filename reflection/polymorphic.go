package reflection

import "github.com/facet-dev/facet/datastore"

// polymorphicName reads the concrete-type name from n under t's polymorphic
// key, falling back to the attribute's configured default.
func polymorphicName(t *Type, n *datastore.Node) (string, bool) {
	key := DefaultPolymorphicKey
	def := ""
	if pk, ok := TypeAttrOf[PolymorphicKey](t, true); ok {
		if pk.Key != "" {
			key = pk.Key
		}
		def = pk.Default
	}
	if n != nil {
		if v, ok := n.TableGet(key); ok {
			if s, sok := v.AsString(); sok && s != "" {
				return s, true
			}
		}
	}
	if def != "" {
		return def, true
	}
	return "", false
}

// polymorphicTarget resolves the concrete type to instantiate for a value
// statically typed as t. Without a name in the data, t itself is the target
// when it can be instantiated.
func polymorphicTarget(t *Type, n *datastore.Node) (*Type, bool) {
	name, ok := polymorphicName(t, n)
	if !ok {
		if t.CanNew() {
			return t, true
		}
		return nil, false
	}
	ct, found := GetType(name)
	if !found || !ct.IsA(t) || !ct.CanNew() {
		return nil, false
	}
	return ct, true
}

// PolymorphicNew instantiates the concrete type named under t's polymorphic
// key in n. The node may be nil, in which case the attribute's default, or t
// itself, picks the type. Returns the instance and its resolved type.
func PolymorphicNew(t *Type, n *datastore.Node) (Any, *Type, bool) {
	ct, ok := polymorphicTarget(t, n)
	if !ok {
		return Any{}, nil, false
	}
	inst, iok := ct.New()
	if !iok {
		return Any{}, nil, false
	}
	return inst, ct, true
}
