package reflection

import (
	"fmt"
	"reflect"

	"github.com/facet-dev/facet/datastore"
	"github.com/facet-dev/facet/internal/util/similar"
)

// deserializeValue fills the member behind dst from n. dst holds a pointer
// to the member, or the member's own addressable storage. skipPost carries
// the root-frame hook suppression through pointer and interface unwrapping;
// it never reaches nested values.
func deserializeValue(ctx *Context, member *TypeInfo, n *datastore.Node, dst WeakAny, skipPost bool) walkStatus {
	t := typeByInfo(member)

	if t != nil && t.scalar != nil {
		if t.scalar.FromNode(n, dst) {
			return walkOK
		}
		return raiseStatus(ctx.raise(ErrSetValueFailed, t.name, "", "scalar handler rejected "+n.Kind().String()))
	}

	if member.SimpleKind() != ComplexKind {
		return deserializeScalar(ctx, member, n, dst)
	}

	if t != nil {
		if a, ok := TypeAttrOf[CustomSerializeType](t, true); ok && a.DeserializeMethod != "" {
			return invokeDeserializeMethod(ctx, t, dst, a.DeserializeMethod, n)
		}
	}

	switch member.GoType().Kind() {
	case reflect.Pointer:
		return deserializePointer(ctx, member, n, dst, skipPost)
	case reflect.Interface:
		return deserializeInterface(ctx, member, n, dst, skipPost)
	}

	if arr, ok := arrayFor(member); ok {
		return deserializeArray(ctx, arr, dst, n)
	}
	if tb, ok := tableFor(member); ok {
		return deserializeTable(ctx, tb, dst, n)
	}
	if t != nil {
		return deserializeInto(ctx, n, t, dst, skipPost, false)
	}
	if n.IsArray() {
		return raiseStatus(ctx.raise(ErrObjectNotArray, member.Name(), "", ""))
	}
	return raiseStatus(ctx.raise(ErrUnsupportedNodeKind, member.Name(), "", "type is not registered"))
}

// deserializeInto runs the generic property walk of t's frame from the table
// node n. The undefined-property check, zero-property check, and post hook
// apply only to the concrete (non-parent) frame.
func deserializeInto(ctx *Context, n *datastore.Node, t *Type, this WeakAny, skipPost, inParent bool) walkStatus {
	if !n.IsTable() {
		return raiseStatus(ctx.raise(ErrUnsupportedNodeKind, t.name, "", "expected a table node, got "+n.Kind().String()))
	}
	if !inParent {
		if t.PropertyCount() == 0 && !t.attrs.HasWithParents(AttrAllowNoProperties) {
			return raiseStatus(ctx.raise(ErrTypeHasNoProperties, t.name, "", ""))
		}
		if !t.attrs.HasWithParents(AttrDisableReflectionCheck) {
			if st := checkUndefinedProperties(ctx, n, t); st != walkOK {
				return st
			}
		}
	}

	for _, par := range t.parents {
		pt := par.typ()
		if pt == nil {
			continue
		}
		up, cok := par.cast(this)
		if !cok {
			if !ctx.raise(ErrSetValueFailed, t.name, "", "no view of parent "+pt.name) {
				return walkAbort
			}
			continue
		}
		if deserializeInto(ctx, n, pt, up, true, true) == walkAbort {
			return walkAbort
		}
	}

	for _, p := range t.properties[:t.ownProps] {
		if !deserializeProperty(ctx, n, t, p, this) {
			return walkAbort
		}
	}

	if !inParent && !skipPost {
		if ps, ok := TypeAttrOf[PostSerializeType](t, true); ok && ps.DeserializeMethod != "" {
			if !invokeHook(ctx, t, this, ps.DeserializeMethod) {
				return walkAbort
			}
		}
	}
	return walkOK
}

// checkUndefinedProperties raises once per input key that no property in t's
// hierarchy claims. The polymorphic key is exempt.
func checkUndefinedProperties(ctx *Context, n *datastore.Node, t *Type) walkStatus {
	polyKey := ""
	if pk, ok := TypeAttrOf[PolymorphicKey](t, true); ok {
		polyKey = pk.Key
		if polyKey == "" {
			polyKey = DefaultPolymorphicKey
		}
	}
	st := walkOK
	n.TableRange(func(key string, _ *datastore.Node) bool {
		if key == polyKey {
			return true
		}
		if _, known := t.propByName[key]; known {
			return true
		}
		names := make([]string, len(t.properties))
		for i, p := range t.properties {
			names[i] = p.name
		}
		if !ctx.raise(ErrUndefinedProperty, t.name, key, didYouMean(key, names)) {
			st = walkAbort
			return false
		}
		return true
	})
	return st
}

// deserializeProperty reads one property of t from the table node n.
// Returns false only on an unhandled error.
func deserializeProperty(ctx *Context, n *datastore.Node, t *Type, p *Property, this WeakAny) bool {
	if p.static || p.attrs.Has(AttrDoNotSerialize) || p.attrs.Has(AttrDeprecated) {
		return true
	}
	ctx.pushProp(p.name)
	defer ctx.pop()

	val, present := n.TableGet(p.name)
	if !present {
		switch {
		case p.attrs.Has(AttrNotRequired):
			return true
		case t.attrs.HasWithParents(AttrNotRequired):
			return true
		case !p.CanWrite() && !p.CanGetPtr():
			// Read-only properties never demand input.
			return true
		}
		return ctx.raise(ErrRequiredPropertyMissing, t.name, p.name, didYouMean(p.name, n.TableKeys()))
	}

	if a, ok := AttrOf[CustomSerializeProperty](p.attrs); ok && a.DeserializeMethod != "" {
		switch invokeDeserializeMethod(ctx, t, this, a.DeserializeMethod, val) {
		case walkAbort:
			return false
		case walkSkipped:
			return true
		}
		return applyIfDeserializedSetTrue(ctx, t, p, this)
	}

	if ptr, pok := p.TryGetPtr(this); pok {
		switch deserializeValue(ctx, p.ti, val, ptr, false) {
		case walkAbort:
			return false
		case walkSkipped:
			return true
		}
		return applyIfDeserializedSetTrue(ctx, t, p, this)
	}

	if !p.CanWrite() {
		return ctx.raise(ErrSetValueFailed, t.name, p.name, "property is read-only")
	}

	// Computed property: fill a scratch copy, then set it back whole.
	cur, gok := p.TryGet(this)
	if !gok {
		cur = newAnyOfType(p.ti)
	}
	switch deserializeValue(ctx, p.ti, val, cur.WeakRef(), false) {
	case walkAbort:
		return false
	case walkSkipped:
		return true
	}
	if !p.TrySet(this, cur) {
		return ctx.raise(ErrSetValueFailed, t.name, p.name, "")
	}
	return applyIfDeserializedSetTrue(ctx, t, p, this)
}

// applyIfDeserializedSetTrue flips the attribute's target property after a
// successful read of p.
func applyIfDeserializedSetTrue(ctx *Context, t *Type, p *Property, this WeakAny) bool {
	a, ok := AttrOf[IfDeserializedSetTrue](p.attrs)
	if !ok {
		return true
	}
	tgt, tok := t.GetProperty(a.PropertyName)
	if !tok {
		return ctx.raise(ErrSetTrueTargetMissing, t.name, a.PropertyName, "")
	}
	if tgt.TypeInfo().SimpleKind() != BoolKind {
		return ctx.raise(ErrSetTrueTargetNotBool, t.name, a.PropertyName, "")
	}
	flag := newAnyOfType(tgt.TypeInfo())
	flag.rv.SetBool(true)
	if !tgt.TrySet(this, flag) {
		return ctx.raise(ErrSetTrueTargetSetFailed, t.name, a.PropertyName, "")
	}
	return true
}

// deserializeScalar converts a scalar node into the member behind dst.
func deserializeScalar(ctx *Context, member *TypeInfo, n *datastore.Node, dst WeakAny) walkStatus {
	av, ok := nodeToAny(n, member)
	if !ok {
		detail := "cannot convert " + n.Kind().String() + " to " + member.Name()
		if member.SimpleKind() == EnumKind {
			if s, sok := n.AsString(); sok {
				if e := enumFor(member); e != nil {
					detail = fmt.Sprintf("unknown name %q", s)
					if hint := didYouMean(s, e.Names()); hint != "" {
						detail += "; " + hint
					}
				}
			}
		}
		return raiseStatus(ctx.raise(ErrSetValueFailed, member.Name(), "", detail))
	}
	mv, writable, dok := derefAs(dst, member.GoType())
	if !dok || !writable {
		return raiseStatus(ctx.raise(ErrPointerUnavailable, member.Name(), "", ""))
	}
	mv.Set(av.rv)
	return walkOK
}

// nodeToAny converts a scalar node to an owned value of the simple-kind type
// ti. Out-of-range numerics fail rather than truncate.
func nodeToAny(n *datastore.Node, ti *TypeInfo) (Any, bool) {
	out := newAnyOfType(ti)
	switch k := ti.SimpleKind(); {
	case k == BoolKind:
		b, ok := n.AsBool()
		if !ok {
			return Any{}, false
		}
		out.rv.SetBool(b)
	case k == StringKind:
		s, ok := n.AsString()
		if !ok {
			return Any{}, false
		}
		out.rv.SetString(s)
	case k == EnumKind:
		raw, ok := enumValueOf(n, ti)
		if !ok {
			return Any{}, false
		}
		rv, rok := integerValue(ti.GoType(), raw)
		if !rok {
			return Any{}, false
		}
		out.rv.Set(rv)
	case k.IsSigned():
		i, ok := n.AsInt64()
		if !ok {
			return Any{}, false
		}
		rv, rok := integerValue(ti.GoType(), i)
		if !rok {
			return Any{}, false
		}
		out.rv.Set(rv)
	case k.IsUnsigned():
		u, ok := n.AsUint64()
		if !ok || out.rv.OverflowUint(u) {
			return Any{}, false
		}
		out.rv.SetUint(u)
	case k.IsFloat():
		f, ok := n.AsFloat64()
		if !ok || out.rv.OverflowFloat(f) {
			return Any{}, false
		}
		out.rv.SetFloat(f)
	default:
		return Any{}, false
	}
	return out, true
}

// enumValueOf reads an enum node as either a registered name or a raw number.
func enumValueOf(n *datastore.Node, ti *TypeInfo) (int64, bool) {
	if s, ok := n.AsString(); ok {
		e := enumFor(ti)
		if e == nil {
			return 0, false
		}
		return e.TryGetValue(s)
	}
	return n.AsInt64()
}

// deserializePointer fills the pointer member behind dst, allocating the
// pointee when the slot is nil. A null node clears the slot.
func deserializePointer(ctx *Context, member *TypeInfo, n *datastore.Node, dst WeakAny, skipPost bool) walkStatus {
	mv, writable, ok := derefAs(dst, member.GoType())
	if !ok || !writable {
		return raiseStatus(ctx.raise(ErrPointerUnavailable, member.Name(), "", ""))
	}
	if n.IsNull() {
		mv.SetZero()
		return walkOK
	}
	pointee := member.Elem()
	if mv.IsNil() {
		if pt := typeByInfo(pointee); pt != nil {
			inst, iok := pt.New()
			if !iok {
				return raiseStatus(ctx.raise(ErrMemberPointerNewFailed, pt.name, "", "instantiation is disabled"))
			}
			mv.Set(inst.rv.Addr())
		} else {
			mv.Set(reflect.New(pointee.GoType()))
		}
	}
	return deserializeValue(ctx, pointee, n, weakFromValue(mv, false), skipPost)
}

// deserializeInterface fills the interface member behind dst with a concrete
// instance picked by the polymorphic key in n. The existing instance is
// reused when its concrete type already matches.
func deserializeInterface(ctx *Context, member *TypeInfo, n *datastore.Node, dst WeakAny, skipPost bool) walkStatus {
	mv, writable, ok := derefAs(dst, member.GoType())
	if !ok || !writable {
		return raiseStatus(ctx.raise(ErrPointerUnavailable, member.Name(), "", ""))
	}
	if n.IsNull() {
		mv.SetZero()
		return walkOK
	}
	it := typeByInfo(member)
	if it == nil {
		return raiseStatus(ctx.raise(ErrMemberPointerNewFailed, member.Name(), "", "interface type is not registered"))
	}
	target, tok := polymorphicTarget(it, n)
	if !tok {
		detail := "no concrete type to instantiate"
		if name, ok2 := polymorphicName(it, n); ok2 {
			detail = fmt.Sprintf("no registered type %q implements %s", name, it.name)
		}
		return raiseStatus(ctx.raise(ErrMemberPointerNewFailed, member.Name(), "", detail))
	}

	if !mv.IsNil() {
		dyn := mv.Elem()
		if dyn.Kind() == reflect.Pointer && !dyn.IsNil() && dyn.Type().Elem() == target.ti.GoType() {
			return deserializeValue(ctx, target.ti, n, weakFromValue(dyn, false), skipPost)
		}
	}

	inst, iok := target.New()
	if !iok {
		return raiseStatus(ctx.raise(ErrMemberPointerNewFailed, member.Name(), "", "cannot instantiate "+target.name))
	}
	ptr := inst.rv.Addr()
	if !ptr.Type().Implements(member.GoType()) {
		return raiseStatus(ctx.raise(ErrMemberPointerNewFailed, member.Name(), "", target.name+" does not implement "+member.Name()))
	}
	st := deserializeValue(ctx, target.ti, n, weakFromValue(ptr, false), skipPost)
	if st == walkOK {
		mv.Set(ptr)
	}
	return st
}

// deserializeArray fills the list container behind this from the array node
// n. Resizable containers reset to empty and grow to the input length; fixed
// ones zero their slots first. A failed element is skipped without advancing
// the output index, so later successes stay packed.
func deserializeArray(ctx *Context, a Array, this WeakAny, n *datastore.Node) walkStatus {
	if !n.IsArray() {
		return raiseStatus(ctx.raise(ErrNodeNotArray, "", "", "got "+n.Kind().String()))
	}
	count, _ := n.ArrayLen()
	if a.CanResize() {
		if !a.TryResize(this, 0) || !a.TryResize(this, count) {
			return raiseStatus(ctx.raise(ErrArrayResizeFailed, "", "", ""))
		}
	} else {
		size, sok := a.TryGetSize(this)
		if !sok {
			return raiseStatus(ctx.raise(ErrObjectNotArray, "", "", "no readable size"))
		}
		if count > size {
			if !ctx.raise(ErrArrayResizeFailed, "", "", fmt.Sprintf("fixed size %d cannot hold %d elements", size, count)) {
				return walkAbort
			}
			count = size
		}
		zeroArrayElements(a, this, size)
	}

	elemTI := a.ElementTypeInfo()
	out := 0
	for i := 0; i < count; i++ {
		en, _ := n.ArrayGet(i)
		ctx.pushIndex(i)
		st := deserializeElement(ctx, a, this, elemTI, out, en)
		ctx.pop()
		switch st {
		case walkAbort:
			return walkAbort
		case walkOK:
			out++
		}
	}
	if out != count && a.CanResize() {
		a.TryResize(this, out)
	}
	return walkOK
}

func deserializeElement(ctx *Context, a Array, this WeakAny, elemTI *TypeInfo, out int, en *datastore.Node) walkStatus {
	ep, ok := a.TryGetElementPtr(this, out)
	if !ok {
		return raiseStatus(ctx.raise(ErrArraySetFailed, "", "", "no writable element pointer"))
	}
	return deserializeValue(ctx, elemTI, en, ep, false)
}

func zeroArrayElements(a Array, this WeakAny, size int) {
	rt := a.ElementTypeInfo().GoType()
	for i := 0; i < size; i++ {
		ep, ok := a.TryGetElementPtr(this, i)
		if !ok {
			continue
		}
		if v, writable, dok := derefAs(ep, rt); dok && writable {
			v.SetZero()
		}
	}
}

// deserializeTable fills the keyed container behind this from the table node
// n. The container is cleared first; an entry whose fill fails is erased
// again so partial values never linger.
func deserializeTable(ctx *Context, tb Table, this WeakAny, n *datastore.Node) walkStatus {
	if !n.IsTable() {
		return raiseStatus(ctx.raise(ErrUnsupportedNodeKind, "", "", "expected a table node, got "+n.Kind().String()))
	}
	if !tb.TryClear(this) {
		return raiseStatus(ctx.raise(ErrTableSetFailed, "", "", "cannot clear destination"))
	}
	valTI := tb.ValueTypeInfo()
	abort := false
	n.TableRange(func(key string, vn *datastore.Node) bool {
		ka, kok := tb.TryConstructKey(key)
		if !kok {
			if !ctx.raise(ErrTableSetFailed, "", "", fmt.Sprintf("key %q does not fit the key type", key)) {
				abort = true
				return false
			}
			return true
		}
		ctx.pushKey(key)
		st := deserializeTableEntry(ctx, tb, this, valTI, ka, vn)
		ctx.pop()
		if st == walkAbort {
			abort = true
			return false
		}
		return true
	})
	if abort {
		return walkAbort
	}
	return walkOK
}

func deserializeTableEntry(ctx *Context, tb Table, this WeakAny, valTI *TypeInfo, key Any, vn *datastore.Node) walkStatus {
	if tb.CanGetValuePtr() {
		vp, ok := tb.TryGetValuePtr(this, key, true)
		if !ok {
			return raiseStatus(ctx.raise(ErrTableSetFailed, "", "", "no writable value pointer"))
		}
		st := deserializeValue(ctx, valTI.Elem(), vn, vp, false)
		if st == walkSkipped && !tb.TryErase(this, key) {
			return raiseStatus(ctx.raise(ErrTableSetFailed, "", "", "cannot erase failed entry"))
		}
		return st
	}

	tmp := newAnyOfType(valTI)
	st := deserializeValue(ctx, valTI, vn, tmp.WeakRef(), false)
	if st != walkOK {
		return st
	}
	if !tb.TryOverwrite(this, key, tmp) {
		return raiseStatus(ctx.raise(ErrTableSetFailed, "", "", ""))
	}
	return walkOK
}

// invokeDeserializeMethod calls a registered deserialize method on self. The
// method takes a *Context and the node and returns a bool.
func invokeDeserializeMethod(ctx *Context, t *Type, self WeakAny, name string, n *datastore.Node) walkStatus {
	m, ok := t.GetMethod(name)
	if !ok {
		return raiseStatus(ctx.raise(ErrCustomSerializerNotFound, t.name, "", "method "+name))
	}
	res, iok := m.TryInvoke(self, AnyOf(ctx), AnyOf(n))
	if !iok {
		return raiseStatus(ctx.raise(ErrCustomSerializerFailed, t.name, "", "method "+name))
	}
	if okRes, bok := AnyValueTo[bool](res); !bok || !okRes {
		return raiseStatus(ctx.raise(ErrCustomSerializerFailed, t.name, "", "method "+name+" reported failure"))
	}
	return walkOK
}

// didYouMean formats a close-match hint, or returns "" when nothing is close.
func didYouMean(name string, candidates []string) string {
	if best := similar.Best(name, candidates, nil); best != "" {
		return fmt.Sprintf("did you mean %q?", best)
	}
	return ""
}
