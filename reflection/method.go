package reflection

import "reflect"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Method describes one invokable member of a registered type. Bound methods
// take the receiver through self; static methods ignore it.
type Method struct {
	name     string
	owner    *TypeInfo
	attrs    *AttributeCollection
	fn       reflect.Value
	hasSelf  bool
	selfCast func(WeakAny) (WeakAny, bool) // set on inherited methods
	params   []*TypeInfo
	ret      *TypeInfo // nil when the method returns nothing
	hasErr   bool      // trailing error result
}

func (m *Method) Name() string                     { return m.name }
func (m *Method) Owner() *TypeInfo                 { return m.owner }
func (m *Method) Attributes() *AttributeCollection { return m.attrs }
func (m *Method) IsStatic() bool                   { return !m.hasSelf }

// Arity returns the number of declared parameters, excluding the receiver.
func (m *Method) Arity() int { return len(m.params) }

// ParamTypeInfo returns the type of parameter i, or nil when out of range.
func (m *Method) ParamTypeInfo(i int) *TypeInfo {
	if i < 0 || i >= len(m.params) {
		return nil
	}
	return m.params[i]
}

// ReturnTypeInfo returns the method's value result type, or nil for none.
// A trailing error result is not part of the reported signature; a non-nil
// error fails the invocation instead.
func (m *Method) ReturnTypeInfo() *TypeInfo { return m.ret }

// TryInvoke calls the method on self with args coerced to the declared
// parameter types. It fails on arity mismatch, uncoercible arguments, an
// unusable receiver, a non-nil trailing error, or a panic in the callee.
func (m *Method) TryInvoke(self WeakAny, args ...Any) (result Any, ok bool) {
	if len(args) != len(m.params) {
		return Any{}, false
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if m.hasSelf {
		if m.selfCast != nil {
			var cok bool
			if self, cok = m.selfCast(self); !cok {
				return Any{}, false
			}
		}
		recv, rok := m.receiver(self)
		if !rok {
			return Any{}, false
		}
		in = append(in, recv)
	}
	for i, a := range args {
		if !a.IsValid() {
			return Any{}, false
		}
		v, cok := coerceValue(a.rv, m.params[i].GoType())
		if !cok {
			return Any{}, false
		}
		in = append(in, v)
	}

	defer func() {
		if recover() != nil {
			result, ok = Any{}, false
		}
	}()
	out := m.fn.Call(in)

	if m.hasErr {
		errv := out[len(out)-1]
		if !errv.IsNil() {
			return Any{}, false
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return Any{}, true
	}
	res := newAnyOfType(TypeInfoFor(out[0].Type()))
	res.rv.Set(out[0])
	return res, true
}

// rebind produces a copy of m whose invocations first cast self with cast.
// Used when a parent's method is surfaced on a child type.
func (m *Method) rebind(cast func(WeakAny) (WeakAny, bool)) *Method {
	if !m.hasSelf {
		return m
	}
	q := *m
	if prev := m.selfCast; prev != nil {
		q.selfCast = func(self WeakAny) (WeakAny, bool) {
			s, ok := cast(self)
			if !ok {
				return WeakAny{}, false
			}
			return prev(s)
		}
	} else {
		q.selfCast = cast
	}
	return &q
}

// receiver resolves self to the *T receiver the bound func expects.
func (m *Method) receiver(self WeakAny) (reflect.Value, bool) {
	if !self.IsValid() {
		return reflect.Value{}, false
	}
	want := m.fn.Type().In(0)
	v := self.rv
	if v.Type() == want {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			// A read-only view invokes on a copy of the receiver.
			if self.readonly {
				pv := reflect.New(want.Elem())
				pv.Elem().Set(v.Elem())
				return pv, true
			}
		}
		return v, true
	}
	// Value self for a pointer receiver needs an addressable copy.
	if want.Kind() == reflect.Pointer && v.Type() == want.Elem() {
		pv := reflect.New(want.Elem())
		pv.Elem().Set(v)
		return pv, true
	}
	return reflect.Value{}, false
}

// newBoundMethod wraps a reflect method discovered on *T. fn is the method
// func with the receiver as its first parameter.
func newBoundMethod(owner *TypeInfo, name string, fn reflect.Value, attrs []Attribute) *Method {
	return buildMethod(owner, name, fn, true, attrs)
}

// newStaticMethod wraps a free function registered on a type.
func newStaticMethod(owner *TypeInfo, name string, fn reflect.Value, attrs []Attribute) *Method {
	return buildMethod(owner, name, fn, false, attrs)
}

func buildMethod(owner *TypeInfo, name string, fn reflect.Value, hasSelf bool, attrs []Attribute) *Method {
	ft := fn.Type()
	m := &Method{
		name:    name,
		owner:   owner,
		fn:      fn,
		hasSelf: hasSelf,
		attrs:   newAttributeCollection(attrs),
	}
	start := 0
	if hasSelf {
		start = 1
	}
	for i := start; i < ft.NumIn(); i++ {
		m.params = append(m.params, TypeInfoFor(ft.In(i)))
	}
	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == errorType {
		m.hasErr = true
		n--
	}
	if n > 0 {
		m.ret = TypeInfoFor(ft.Out(0))
	}
	return m
}
