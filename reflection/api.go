package reflection

import (
	"github.com/facet-dev/facet/datastore"
)

// Serialize renders obj as a fresh node using ctx for error handling. obj is
// typically a pointer to a value of a registered type, but bare values,
// slices, arrays, and maps work too. When ctx has no policy the serialize
// default is installed.
func Serialize(ctx *Context, obj any) (*datastore.Node, bool) {
	if ctx.policy == nil {
		ctx.policy = DefaultSerializePolicy
	}
	w := NewWeakAny(obj)
	if !w.IsValid() {
		ctx.raise(ErrUnknown, "", "", "cannot serialize a nil object")
		return nil, false
	}
	member := w.TypeInfo()
	if member.IsPointer() {
		member = member.Elem()
	}
	n, st := serializeValue(ctx, member, w, ctx.skipPost)
	if st != walkOK {
		return nil, false
	}
	return n, true
}

// Deserialize fills the value behind obj, which must be a non-nil pointer,
// from n. When ctx has no policy the deserialize default is installed, which
// tolerates unknown keys in the input.
func Deserialize(ctx *Context, n *datastore.Node, obj any) bool {
	if ctx.policy == nil {
		ctx.policy = DefaultDeserializePolicy
	}
	w := NewWeakAny(obj)
	if !w.IsValid() {
		ctx.raise(ErrPointerUnavailable, "", "", "cannot deserialize into a nil object")
		return false
	}
	member := w.TypeInfo()
	if !member.IsPointer() {
		ctx.raise(ErrPointerUnavailable, member.Name(), "", "destination must be a pointer")
		return false
	}
	return deserializeValue(ctx, member.Elem(), n, w, ctx.skipPost) == walkOK
}

// GenericSerializeInto runs the default property walk of obj into node,
// which must be a table node. It bypasses any CustomSerializeType attribute
// on obj's type, so custom type serializers use it to re-enter the default
// traversal. Post hooks still run.
func GenericSerializeInto(ctx *Context, node *datastore.Node, obj any) bool {
	if ctx.policy == nil {
		ctx.policy = DefaultSerializePolicy
	}
	t, this, ok := resolveRegistered(ctx, obj)
	if !ok {
		return false
	}
	if !node.IsTable() {
		return ctx.raise(ErrUnsupportedNodeKind, t.name, "", "destination is not a table node")
	}
	return serializeInto(ctx, node, t, this, false, false)
}

// GenericDeserializeInto runs the default property walk of obj from node,
// bypassing any CustomSerializeType attribute on obj's type. obj must be a
// pointer so properties can be written in place.
func GenericDeserializeInto(ctx *Context, node *datastore.Node, obj any) bool {
	if ctx.policy == nil {
		ctx.policy = DefaultDeserializePolicy
	}
	t, this, ok := resolveRegistered(ctx, obj)
	if !ok {
		return false
	}
	return deserializeInto(ctx, node, t, this, false, false) == walkOK
}

// resolveRegistered maps obj to its registered type, dereferencing one
// pointer level.
func resolveRegistered(ctx *Context, obj any) (*Type, WeakAny, bool) {
	w := NewWeakAny(obj)
	if !w.IsValid() {
		ctx.raise(ErrUnknown, "", "", "nil object")
		return nil, WeakAny{}, false
	}
	ti := w.TypeInfo()
	if ti.IsPointer() {
		ti = ti.Elem()
	}
	t := typeByInfo(ti)
	if t == nil {
		ctx.raise(ErrUnknown, ti.Name(), "", "type is not registered")
		return nil, WeakAny{}, false
	}
	return t, w, true
}

// SerializeToNode serializes obj with a fresh context.
func SerializeToNode(obj any, opts ...ContextOption) (*datastore.Node, error) {
	ctx := NewContext(opts...)
	n, ok := Serialize(ctx, obj)
	if !ok {
		return nil, walkError(ctx)
	}
	return n, nil
}

// SerializeToJSON serializes obj and renders the result as JSON.
func SerializeToJSON(obj any, indent bool, opts ...ContextOption) (string, error) {
	n, err := SerializeToNode(obj, opts...)
	if err != nil {
		return "", err
	}
	return n.ToJSON(indent)
}

// DeserializeFromNode fills obj, a non-nil pointer, from n with a fresh
// context.
func DeserializeFromNode(n *datastore.Node, obj any, opts ...ContextOption) error {
	ctx := NewContext(opts...)
	if !Deserialize(ctx, n, obj) {
		return walkError(ctx)
	}
	return nil
}

// DeserializeFromJSON parses data as JSON and fills obj from it.
func DeserializeFromJSON(data []byte, obj any, opts ...ContextOption) error {
	n, err := datastore.ParseJSON(data)
	if err != nil {
		return err
	}
	return DeserializeFromNode(n, obj, opts...)
}

// walkError extracts the failure from a finished walk. A handled root-level
// failure leaves no fatal error, so the last raised one stands in.
func walkError(ctx *Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ctx.errs) > 0 {
		return ctx.errs[len(ctx.errs)-1]
	}
	return &Error{Kind: ErrUnknown}
}
