package reflection

import (
	"reflect"

	"github.com/facet-dev/facet/datastore"
)

// DefaultPolymorphicKey is the table key that carries a concrete type's
// registered name when no PolymorphicKey attribute names another.
const DefaultPolymorphicKey = "Type"

// walkStatus is the outcome of one step of a serialization walk. A handled
// error skips the failing piece; an unhandled one aborts the whole call.
type walkStatus uint8

const (
	walkOK walkStatus = iota
	walkSkipped
	walkAbort
)

// raiseStatus converts a Context.raise decision to a walk status.
func raiseStatus(handled bool) walkStatus {
	if handled {
		return walkSkipped
	}
	return walkAbort
}

// serializeValue renders the member value behind view as a fresh node.
// view holds the member value or a pointer to it. skipPost carries the
// root-frame hook suppression through pointer and interface unwrapping; it
// never reaches nested values. A (nil, walkSkipped) result means the failure
// was raised and handled; the caller drops the value and continues.
func serializeValue(ctx *Context, member *TypeInfo, view WeakAny, skipPost bool) (*datastore.Node, walkStatus) {
	t := typeByInfo(member)
	mv, _, ok := derefAs(view, member.GoType())
	if !ok {
		return nil, raiseStatus(ctx.raise(ErrGetValueFailed, member.Name(), "", "no readable value"))
	}

	if t != nil && t.scalar != nil {
		cur := newAnyOfType(member)
		cur.rv.Set(mv)
		n, hok := t.scalar.ToNode(cur)
		if !hok {
			return nil, raiseStatus(ctx.raise(ErrGetValueFailed, t.name, "", "scalar handler refused the value"))
		}
		return n, walkOK
	}

	if member.SimpleKind() != ComplexKind {
		n, sok := scalarToNode(member, mv)
		if !sok {
			return nil, raiseStatus(ctx.raise(ErrGetValueFailed, member.Name(), "", "no scalar form"))
		}
		return n, walkOK
	}

	switch member.GoType().Kind() {
	case reflect.Pointer:
		if mv.IsNil() {
			return datastore.Null(), walkOK
		}
		return serializeValue(ctx, member.Elem(), weakFromValue(mv, view.readonly), skipPost)
	case reflect.Interface:
		if mv.IsNil() {
			return datastore.Null(), walkOK
		}
		dyn := mv.Elem()
		return serializeValue(ctx, TypeInfoFor(dyn.Type()), weakFromValue(dyn, view.readonly), skipPost)
	}

	if t != nil {
		if a, aok := TypeAttrOf[CustomSerializeType](t, true); aok && a.SerializeMethod != "" {
			return invokeSerializeMethod(ctx, t, view, a.SerializeMethod)
		}
	}

	if arr, aok := arrayFor(member); aok {
		return serializeArray(ctx, arr, view)
	}
	if tbl, tok := tableFor(member); tok {
		return serializeTable(ctx, tbl, view)
	}

	if t != nil {
		out := datastore.NewTable()
		if !serializeInto(ctx, out, t, view, skipPost, false) {
			return nil, walkAbort
		}
		return out, walkOK
	}
	return nil, raiseStatus(ctx.raise(ErrGetValueFailed, member.Name(), "", "type is not registered"))
}

// serializeInto runs the generic property walk of t's frame into node.
// Parents serialize before own properties, so a child property of the same
// name overwrites the parent's entry. The polymorphic key and post-serialize
// hook apply only to the concrete (non-parent) frame.
func serializeInto(ctx *Context, node *datastore.Node, t *Type, this WeakAny, skipPost, inParent bool) bool {
	if !inParent && t.PropertyCount() == 0 && !t.attrs.HasWithParents(AttrAllowNoProperties) {
		return ctx.raise(ErrTypeHasNoProperties, t.name, "", "")
	}

	for _, par := range t.parents {
		pt := par.typ()
		if pt == nil {
			continue
		}
		up, cok := par.cast(this)
		if !cok {
			if !ctx.raise(ErrGetValueFailed, t.name, "", "no view of parent "+pt.name) {
				return false
			}
			continue
		}
		if !serializeInto(ctx, node, pt, up, true, true) {
			return false
		}
	}

	for _, p := range t.properties[:t.ownProps] {
		if p.static {
			continue
		}
		if !serializeProperty(ctx, node, t, p, this) {
			return false
		}
	}

	if inParent {
		return true
	}
	if pk, ok := TypeAttrOf[PolymorphicKey](t, true); ok {
		key := pk.Key
		if key == "" {
			key = DefaultPolymorphicKey
		}
		node.TableSet(key, datastore.String(t.name))
	}
	if !skipPost {
		if ps, ok := TypeAttrOf[PostSerializeType](t, true); ok && ps.SerializeMethod != "" {
			return invokeHook(ctx, t, this, ps.SerializeMethod)
		}
	}
	return true
}

// serializeProperty writes one property of t to node, honoring the skip
// attributes in priority order. Returns false only on an unhandled error.
func serializeProperty(ctx *Context, node *datastore.Node, t *Type, p *Property, this WeakAny) bool {
	if p.attrs.Has(AttrDoNotSerialize) || p.attrs.Has(AttrDeprecated) {
		return true
	}
	ctx.pushProp(p.name)
	defer ctx.pop()

	if a, ok := AttrOf[DoNotSerializeIfEqualToSimpleType](p.attrs); ok {
		cur, gok := p.TryGet(this)
		if !gok {
			return ctx.raise(ErrGetValueFailed, t.name, p.name, "")
		}
		equal, kind := simpleValueEqual(cur, a.Value)
		if kind != ErrNone {
			return ctx.raise(kind, t.name, p.name, "")
		}
		if equal {
			return true
		}
	}

	if a, ok := AttrOf[DoNotSerializeIf](p.attrs); ok {
		m, mok := t.GetMethod(a.MethodName)
		if !mok {
			return ctx.raise(ErrSkipIfDelegateNotFound, t.name, p.name, "method "+a.MethodName)
		}
		res, iok := m.TryInvoke(this)
		if !iok {
			return ctx.raise(ErrSkipIfDelegateFailed, t.name, p.name, "method "+a.MethodName)
		}
		skip, bok := AnyValueTo[bool](res)
		if !bok {
			return ctx.raise(ErrSkipIfDelegateFailed, t.name, p.name, "method "+a.MethodName+" does not return bool")
		}
		if skip {
			return true
		}
	}

	if a, ok := AttrOf[CustomSerializeProperty](p.attrs); ok && a.SerializeMethod != "" {
		n, st := invokeSerializeMethod(ctx, t, this, a.SerializeMethod)
		switch st {
		case walkAbort:
			return false
		case walkSkipped:
			return true
		}
		node.TableSet(p.name, n)
		return true
	}

	view, vok := p.TryGetConstPtr(this)
	if !vok {
		cur, gok := p.TryGet(this)
		if !gok {
			return ctx.raise(ErrGetValueFailed, t.name, p.name, "")
		}
		view = cur.WeakRef().AsReadOnly()
	}
	n, st := serializeValue(ctx, p.ti, view, false)
	switch st {
	case walkAbort:
		return false
	case walkSkipped:
		return true
	}
	if !node.TableSet(p.name, n) {
		return ctx.raise(ErrSetValueFailed, t.name, p.name, "destination is not a table node")
	}
	return true
}

// serializeArray renders the list container behind this as a fresh array
// node. Elements whose failure is handled are dropped; the node holds the
// successes in order.
func serializeArray(ctx *Context, a Array, this WeakAny) (*datastore.Node, walkStatus) {
	size, ok := a.TryGetSize(this)
	if !ok {
		return nil, raiseStatus(ctx.raise(ErrObjectNotArray, "", "", "no readable size"))
	}
	elemTI := a.ElementTypeInfo()
	out := datastore.NewArray()
	for i := 0; i < size; i++ {
		ctx.pushIndex(i)
		en, st := serializeElement(ctx, a, this, elemTI, i)
		ctx.pop()
		switch st {
		case walkAbort:
			return nil, walkAbort
		case walkOK:
			out.ArrayAppend(en)
		}
	}
	return out, walkOK
}

func serializeElement(ctx *Context, a Array, this WeakAny, elemTI *TypeInfo, i int) (*datastore.Node, walkStatus) {
	view, ok := a.TryGetElementConstPtr(this, i)
	if !ok {
		ev, gok := a.TryGet(this, i)
		if !gok {
			return nil, raiseStatus(ctx.raise(ErrGetValueFailed, "", "", "no readable element"))
		}
		view = ev.WeakRef().AsReadOnly()
	}
	return serializeValue(ctx, elemTI, view, false)
}

// serializeTable renders the keyed container behind this as a fresh table
// node. Entries whose key has no string form raise ErrTableKeyStringFailed
// and, when handled, are dropped.
func serializeTable(ctx *Context, tb Table, this WeakAny) (*datastore.Node, walkStatus) {
	out := datastore.NewTable()
	valTI := tb.ValueTypeInfo()
	abort := false
	walked := tb.ForEach(this, func(key Any, value WeakAny) bool {
		ks, kok := tb.TryKeyString(key)
		if !kok {
			if !ctx.raise(ErrTableKeyStringFailed, "", "", "") {
				abort = true
				return false
			}
			return true
		}
		ctx.pushKey(ks)
		vn, st := serializeValue(ctx, valTI, value, false)
		ctx.pop()
		switch st {
		case walkAbort:
			abort = true
			return false
		case walkOK:
			out.TableSet(ks, vn)
		}
		return true
	})
	if abort {
		return nil, walkAbort
	}
	if !walked {
		return nil, raiseStatus(ctx.raise(ErrGetValueFailed, "", "", "no readable table"))
	}
	return out, walkOK
}

// invokeSerializeMethod calls a registered serialize method on self. The
// method must take a *Context and return the produced node; nil reports
// failure.
func invokeSerializeMethod(ctx *Context, t *Type, self WeakAny, name string) (*datastore.Node, walkStatus) {
	m, ok := t.GetMethod(name)
	if !ok {
		return nil, raiseStatus(ctx.raise(ErrCustomSerializerNotFound, t.name, "", "method "+name))
	}
	res, iok := m.TryInvoke(self, AnyOf(ctx))
	if !iok {
		return nil, raiseStatus(ctx.raise(ErrCustomSerializerFailed, t.name, "", "method "+name))
	}
	n, nok := AnyValueTo[*datastore.Node](res)
	if !nok || n == nil {
		return nil, raiseStatus(ctx.raise(ErrCustomSerializerFailed, t.name, "", "method "+name+" produced no node"))
	}
	return n, walkOK
}

// invokeHook calls a post-serialize method on self. The method takes no
// arguments; a bool result of false reports failure.
func invokeHook(ctx *Context, t *Type, self WeakAny, name string) bool {
	m, ok := t.GetMethod(name)
	if !ok {
		return ctx.raise(ErrPostSerializeNotFound, t.name, "", "method "+name)
	}
	res, iok := m.TryInvoke(self)
	if !iok {
		return ctx.raise(ErrPostSerializeFailed, t.name, "", "method "+name)
	}
	if res.IsValid() {
		if b, bok := AnyValueTo[bool](res); bok && !b {
			return ctx.raise(ErrPostSerializeFailed, t.name, "", "method "+name)
		}
	}
	return true
}

// scalarToNode writes a simple-kind value as a scalar node. Unsigned kinds
// narrower than uint64 write as Int64, matching the signed funnel the reader
// applies; uint64 keeps its own node kind so large values survive.
func scalarToNode(ti *TypeInfo, v reflect.Value) (*datastore.Node, bool) {
	switch k := ti.SimpleKind(); {
	case k == BoolKind:
		return datastore.Bool(v.Bool()), true
	case k == StringKind:
		return datastore.String(v.String()), true
	case k == EnumKind:
		raw := enumRawValue(v)
		if e := enumFor(ti); e != nil {
			if name, ok := e.TryGetName(raw); ok {
				return datastore.String(name), true
			}
		}
		// Unnamed enum values keep their raw number.
		return datastore.Int(raw), true
	case k == Uint64Kind:
		return datastore.Uint(v.Uint()), true
	case k.IsUnsigned():
		return datastore.Int(int64(v.Uint())), true
	case k.IsSigned():
		return datastore.Int(v.Int()), true
	case k.IsFloat():
		return datastore.Float(v.Float()), true
	default:
		return nil, false
	}
}

// simpleValueEqual compares a property's current value against a configured
// default by simple-type kind. All integral kinds except uint64 compare as
// int64, so a uint64-sized default can mis-compare near the int64 bound;
// this mirrors the established data format and stays.
func simpleValueEqual(cur, def Any) (bool, ErrorKind) {
	if !cur.IsValid() || !def.IsValid() {
		return false, ErrSkipIfEqualTypeMismatch
	}
	ck := cur.ti.SimpleKind()
	dk := def.ti.SimpleKind()
	switch {
	case ck == ComplexKind:
		return false, ErrSkipIfEqualComplexValue
	case ck == BoolKind:
		if dk != BoolKind {
			return false, ErrSkipIfEqualTypeMismatch
		}
		return cur.rv.Bool() == def.rv.Bool(), ErrNone
	case ck == StringKind:
		if dk != StringKind {
			return false, ErrSkipIfEqualTypeMismatch
		}
		return cur.rv.String() == def.rv.String(), ErrNone
	case ck.IsFloat():
		switch {
		case dk.IsFloat():
			return cur.rv.Float() == def.rv.Float(), ErrNone
		case dk.IsIntegral() || dk == EnumKind:
			return cur.rv.Float() == float64(enumRawValue(def.rv)), ErrNone
		}
		return false, ErrSkipIfEqualTypeMismatch
	case ck == Uint64Kind:
		switch {
		case dk == Uint64Kind:
			return cur.rv.Uint() == def.rv.Uint(), ErrNone
		case dk.IsIntegral() || dk == EnumKind:
			raw := enumRawValue(def.rv)
			return raw >= 0 && cur.rv.Uint() == uint64(raw), ErrNone
		}
		return false, ErrSkipIfEqualTypeMismatch
	case ck.IsIntegral() || ck == EnumKind:
		if !dk.IsIntegral() && dk != EnumKind {
			return false, ErrSkipIfEqualTypeMismatch
		}
		return enumRawValue(cur.rv) == enumRawValue(def.rv), ErrNone
	}
	return false, ErrSkipIfEqualTypeMismatch
}
