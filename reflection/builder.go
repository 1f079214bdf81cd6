package reflection

import (
	"fmt"
	"reflect"
	"strings"
)

// Integral constrains enum underlying types.
type Integral interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Register begins registration of T under the given name. Struct fields
// become properties: exported fields only, renamed or skipped through the
// `facet` tag, with anonymous struct fields treated as parents. Call
// Register() on the builder to commit, typically from an init function.
//
//	reflection.Register[Widget]("Widget").
//		Attrs(reflection.Category{Name: "UI"}).
//		PropAttrs("ID", reflection.NotRequired{}).
//		Register()
func Register[T any](name string) *TypeBuilder[T] {
	return &TypeBuilder[T]{
		name:      name,
		ti:        TypeInfoOf[T](),
		propAttrs: make(map[string][]Attribute),
	}
}

// RegisterStatic begins registration of a holder type that exists only to
// carry static properties and methods, e.g. a package's command line
// argument variables. The type is exempt from the zero-property check.
func RegisterStatic[T any](name string) *TypeBuilder[T] {
	return Register[T](name).Attrs(AllowNoProperties{})
}

// TypeBuilder accumulates one type registration.
type TypeBuilder[T any] struct {
	name       string
	ti         *TypeInfo
	aliases    []string
	attrs      []Attribute
	propAttrs  map[string][]Attribute
	computed   []*Property
	methods    []*Method
	implements []*TypeInfo
	array      Array
	table      Table
	scalar     ScalarHandler
	disableNew bool
}

// Aliases adds alternate registry names, typically old names kept for data
// compatibility.
func (b *TypeBuilder[T]) Aliases(names ...string) *TypeBuilder[T] {
	b.aliases = append(b.aliases, names...)
	return b
}

// Attrs adds type-level attributes.
func (b *TypeBuilder[T]) Attrs(attrs ...Attribute) *TypeBuilder[T] {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// PropAttrs adds attributes to the named property. The name is the property
// name after any tag rename.
func (b *TypeBuilder[T]) PropAttrs(prop string, attrs ...Attribute) *TypeBuilder[T] {
	b.propAttrs[prop] = append(b.propAttrs[prop], attrs...)
	return b
}

// Implements declares an interface parent. The interface must already be
// registered and *T must satisfy it.
func (b *TypeBuilder[T]) Implements(iface *TypeInfo) *TypeBuilder[T] {
	b.implements = append(b.implements, iface)
	return b
}

// Prop registers a computed property backed by accessor funcs. get must be
// func(*T) R; set, when not nil, must be func(*T, R).
func (b *TypeBuilder[T]) Prop(name string, get, set any, attrs ...Attribute) *TypeBuilder[T] {
	rt := b.ti.GoType()
	gv := reflect.ValueOf(get)
	gt := gv.Type()
	if gt.Kind() != reflect.Func || gt.NumIn() != 1 || gt.In(0) != reflect.PointerTo(rt) || gt.NumOut() != 1 {
		panic(fmt.Sprintf("reflection: %s.%s getter must be func(*%s) R", b.name, name, rt))
	}
	member := TypeInfoFor(gt.Out(0))

	getter := func(self WeakAny) (Any, bool) {
		sv, _, ok := derefAs(self, rt)
		if !ok || !sv.CanAddr() {
			return Any{}, false
		}
		out := newAnyOfType(member)
		out.rv.Set(gv.Call([]reflect.Value{sv.Addr()})[0])
		return out, true
	}

	var setter func(self WeakAny, v Any) bool
	if set != nil {
		sv := reflect.ValueOf(set)
		st := sv.Type()
		if st.Kind() != reflect.Func || st.NumIn() != 2 || st.In(0) != reflect.PointerTo(rt) ||
			st.In(1) != member.GoType() || st.NumOut() != 0 {
			panic(fmt.Sprintf("reflection: %s.%s setter must be func(*%s, %s)", b.name, name, rt, member))
		}
		setter = func(self WeakAny, v Any) bool {
			tv, writable, ok := derefAs(self, rt)
			if !ok || !writable || !tv.CanAddr() {
				return false
			}
			cv, cok := coerceValue(v.rv, member.GoType())
			if !cok {
				return false
			}
			sv.Call([]reflect.Value{tv.Addr(), cv})
			return true
		}
	}

	b.computed = append(b.computed, newComputedProperty(b.ti, member, name, getter, setter, attrs))
	return b
}

// StaticVar attaches a package-level variable as a static property. target
// must be a non-nil pointer to the variable.
func (b *TypeBuilder[T]) StaticVar(name string, target any, attrs ...Attribute) *TypeBuilder[T] {
	tv := reflect.ValueOf(target)
	if tv.Kind() != reflect.Pointer || tv.IsNil() {
		panic(fmt.Sprintf("reflection: static %s.%s needs a non-nil pointer target", b.name, name))
	}
	b.computed = append(b.computed, newStaticProperty(b.ti, name, tv, attrs))
	return b
}

// Method registers the Go method of *T with the given name.
func (b *TypeBuilder[T]) Method(name string, attrs ...Attribute) *TypeBuilder[T] {
	pt := reflect.PointerTo(b.ti.GoType())
	m, ok := pt.MethodByName(name)
	if !ok {
		panic(fmt.Sprintf("reflection: %s has no method %q", pt, name))
	}
	if m.Type.IsVariadic() {
		panic(fmt.Sprintf("reflection: method %s.%s is variadic", b.name, name))
	}
	b.methods = append(b.methods, newBoundMethod(b.ti, name, m.Func, attrs))
	return b
}

// StaticMethod registers a free function as a method that ignores self.
func (b *TypeBuilder[T]) StaticMethod(name string, fn any, attrs ...Attribute) *TypeBuilder[T] {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.Type().IsVariadic() {
		panic(fmt.Sprintf("reflection: static method %s.%s must be a non-variadic func", b.name, name))
	}
	b.methods = append(b.methods, newStaticMethod(b.ti, name, fv, attrs))
	return b
}

// ArrayAdapter installs a custom list adapter, overriding derivation.
func (b *TypeBuilder[T]) ArrayAdapter(a Array) *TypeBuilder[T] {
	b.array = a
	return b
}

// TableAdapter installs a custom keyed adapter, overriding derivation.
func (b *TypeBuilder[T]) TableAdapter(t Table) *TypeBuilder[T] {
	b.table = t
	return b
}

// Scalar installs a custom scalar codec for the whole type.
func (b *TypeBuilder[T]) Scalar(h ScalarHandler) *TypeBuilder[T] {
	b.scalar = h
	return b
}

// DisableNew suppresses default construction, for types that must come from
// a factory.
func (b *TypeBuilder[T]) DisableNew() *TypeBuilder[T] {
	b.disableNew = true
	return b
}

// Register commits the registration and returns the finished Type. It
// panics on name collisions, unregistered parents, and malformed members;
// these are programmer errors caught at init time.
func (b *TypeBuilder[T]) Register() *Type {
	rt := b.ti.GoType()
	t := &Type{
		name:    b.name,
		aliases: b.aliases,
		ti:      b.ti,
		attrs:   newAttributeCollection(b.attrs),

		arrayAdapter: b.array,
		tableAdapter: b.table,
		scalar:       b.scalar,
	}

	if rt.Kind() == reflect.Struct {
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if f.Anonymous {
				t.parents = append(t.parents, embeddedParent(rt, f))
				continue
			}
			if !f.IsExported() {
				continue
			}
			name, skip := propName(f)
			if skip {
				continue
			}
			t.properties = append(t.properties, newFieldProperty(b.ti, name, f.Index, nil))
		}
	}
	t.properties = append(t.properties, b.computed...)
	t.methods = b.methods

	for name, attrs := range b.propAttrs {
		var target *Property
		for _, p := range t.properties {
			if p.name == name {
				target = p
				break
			}
		}
		if target == nil {
			panic(fmt.Sprintf("reflection: %s has no property %q for PropAttrs", b.name, name))
		}
		target.attrs.attrs = append(target.attrs.attrs, attrs...)
	}

	for _, iface := range b.implements {
		t.parents = append(t.parents, interfaceParent(rt, iface))
	}

	if !b.disableNew {
		ti := b.ti
		t.newFn = func() Any { return newAnyOfType(ti) }
	}
	return register(t)
}

// propName applies the `facet` struct tag: "-" skips the field, a leading
// name renames it.
func propName(f reflect.StructField) (string, bool) {
	tag, ok := f.Tag.Lookup("facet")
	if !ok || tag == "" {
		return f.Name, false
	}
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return "", true
	case "":
		return f.Name, false
	default:
		return name, false
	}
}

// embeddedParent builds the parent link for an anonymous struct field,
// including the upcast into the embedded value.
func embeddedParent(child reflect.Type, f reflect.StructField) Parent {
	ft := f.Type
	deref := false
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
		deref = true
	}
	if ft.Kind() != reflect.Struct {
		panic(fmt.Sprintf("reflection: embedded field %s.%s is not a struct", child, f.Name))
	}
	idx := f.Index
	pti := TypeInfoFor(ft)
	cast := func(self WeakAny) (WeakAny, bool) {
		sv, writable, ok := derefAs(self, child)
		if !ok || !sv.CanAddr() {
			return WeakAny{}, false
		}
		fv := sv.FieldByIndex(idx)
		if deref {
			if fv.IsNil() {
				return WeakAny{}, false
			}
			return weakFromValue(fv, !writable), true
		}
		return weakFromValue(fv.Addr(), !writable), true
	}
	return Parent{ti: pti, cast: cast}
}

// interfaceParent builds the parent link for a declared interface. The
// upcast wraps the child pointer in a staged interface value; because the
// interface holds the same pointer, method dispatch still reaches the
// original object.
func interfaceParent(child reflect.Type, iface *TypeInfo) Parent {
	irt := iface.GoType()
	if irt.Kind() != reflect.Interface {
		panic(fmt.Sprintf("reflection: Implements(%s) is not an interface", iface))
	}
	pt := reflect.PointerTo(child)
	if !pt.Implements(irt) {
		panic(fmt.Sprintf("reflection: %s does not implement %s", pt, irt))
	}
	cast := func(self WeakAny) (WeakAny, bool) {
		v := self.rv
		if v.Type() != pt {
			if !v.CanAddr() || v.Type() != child {
				return WeakAny{}, false
			}
			v = v.Addr()
		}
		staged := reflect.New(irt)
		staged.Elem().Set(v)
		return weakFromValue(staged, self.readonly), true
	}
	return Parent{ti: iface, cast: cast}
}

// RegisterEnum begins registration of an enum type. Values are declared in
// order; aliases resolve on lookup but never render.
//
//	reflection.RegisterEnum[Difficulty]("Difficulty").
//		Value("Easy", DifficultyEasy).
//		Value("Hard", DifficultyHard).
//		Alias("Beginner", "Easy").
//		Register()
func RegisterEnum[T Integral](name string) *EnumBuilder[T] {
	return &EnumBuilder[T]{name: name, ti: TypeInfoOf[T]()}
}

// EnumBuilder accumulates one enum registration.
type EnumBuilder[T Integral] struct {
	name       string
	ti         *TypeInfo
	aliases    []string
	attrs      []Attribute
	values     []EnumValue
	valAliases map[string]int64
	names      map[string]struct{}
}

// Aliases adds alternate registry names for the enum type itself.
func (b *EnumBuilder[T]) Aliases(names ...string) *EnumBuilder[T] {
	b.aliases = append(b.aliases, names...)
	return b
}

// Attrs adds type-level attributes.
func (b *EnumBuilder[T]) Attrs(attrs ...Attribute) *EnumBuilder[T] {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// Value declares a named enum constant.
func (b *EnumBuilder[T]) Value(name string, v T, attrs ...Attribute) *EnumBuilder[T] {
	b.addValue(name, int64(v), attrs)
	return b
}

// Alias declares an alternate lookup name for an already declared value.
// Aliases resolve through TryGetValue but are not values themselves.
func (b *EnumBuilder[T]) Alias(alias, canonical string) *EnumBuilder[T] {
	for _, v := range b.values {
		if v.name == canonical {
			if _, dup := b.names[alias]; dup {
				panic(fmt.Sprintf("reflection: enum %s declares %q twice", b.name, alias))
			}
			b.names[alias] = struct{}{}
			if b.valAliases == nil {
				b.valAliases = make(map[string]int64)
			}
			b.valAliases[alias] = v.value
			return b
		}
	}
	panic(fmt.Sprintf("reflection: enum %s alias %q references unknown value %q", b.name, alias, canonical))
}

func (b *EnumBuilder[T]) addValue(name string, v int64, attrs []Attribute) {
	if b.names == nil {
		b.names = make(map[string]struct{})
	}
	if _, dup := b.names[name]; dup {
		panic(fmt.Sprintf("reflection: enum %s declares %q twice", b.name, name))
	}
	b.names[name] = struct{}{}
	b.values = append(b.values, EnumValue{name: name, value: v, attrs: newAttributeCollection(attrs)})
}

// Register commits the enum. The enum's TypeInfo reports EnumKind from here
// on.
func (b *EnumBuilder[T]) Register() *Type {
	e := &Enum{
		ti:      b.ti,
		values:  b.values,
		byName:  make(map[string]int64, len(b.values)+len(b.valAliases)),
		byValue: make(map[int64]string, len(b.values)),
	}
	for _, v := range b.values {
		e.byName[v.name] = v.value
		if _, ok := e.byValue[v.value]; !ok {
			e.byValue[v.value] = v.name
		}
	}
	for alias, v := range b.valAliases {
		e.byName[alias] = v
	}
	ti := b.ti
	t := &Type{
		name:    b.name,
		aliases: b.aliases,
		ti:      ti,
		attrs:   newAttributeCollection(b.attrs),
		enum:    e,
		newFn:   func() Any { return newAnyOfType(ti) },
	}
	return register(t)
}

// RegisterInterface registers an interface type, the anchor for polymorphic
// fields. Concrete implementations declare it with Implements.
func RegisterInterface[T any](name string, attrs ...Attribute) *Type {
	ti := TypeInfoOf[T]()
	if ti.GoType().Kind() != reflect.Interface {
		panic(fmt.Sprintf("reflection: RegisterInterface[%s] is not an interface", ti))
	}
	t := &Type{
		name:  name,
		ti:    ti,
		attrs: newAttributeCollection(attrs),
	}
	return register(t)
}

// RegisterScalar registers T with a custom scalar codec. The type serializes
// through the handler instead of its fields.
func RegisterScalar[T any](name string, h ScalarHandler, attrs ...Attribute) *Type {
	ti := TypeInfoOf[T]()
	t := &Type{
		name:   name,
		ti:     ti,
		attrs:  newAttributeCollection(attrs),
		scalar: h,
		newFn:  func() Any { return newAnyOfType(ti) },
	}
	return register(t)
}
