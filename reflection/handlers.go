package reflection

import (
	"github.com/google/uuid"

	"github.com/facet-dev/facet/datastore"
)

// ScalarHandler converts a whole type to and from a single scalar data node,
// bypassing the per-property walk. Identifier-like types whose data form is
// one string or number register a handler instead of properties.
type ScalarHandler interface {
	// ToNode renders the value as a scalar node.
	ToNode(v Any) (*datastore.Node, bool)
	// FromNode fills the destination behind dst from n.
	FromNode(n *datastore.Node, dst WeakAny) bool
}

// uuidHandler stores uuid.UUID values in their canonical string form.
type uuidHandler struct{}

func (uuidHandler) ToNode(v Any) (*datastore.Node, bool) {
	id, ok := AnyValueTo[uuid.UUID](v)
	if !ok {
		return nil, false
	}
	return datastore.String(id.String()), true
}

func (uuidHandler) FromNode(n *datastore.Node, dst WeakAny) bool {
	s, ok := n.AsString()
	if !ok {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	p, ok := PointerTo[uuid.UUID](dst)
	if !ok {
		return false
	}
	*p = id
	return true
}

func init() {
	registerBuiltin(func() {
		RegisterScalar[uuid.UUID]("UUID", uuidHandler{})
	})
}
