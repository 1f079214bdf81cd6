package reflection

// Attribute is an immutable metadata record attached to a Type, Property,
// Method, or enum value. Each attribute kind has a unique id; the set of
// kinds is open, so applications can define their own.
type Attribute interface {
	AttributeID() string
}

// AttributeCollection holds the attributes of one metadata node. Collections
// attached to a Type know their owner, which enables parent-chain lookup.
type AttributeCollection struct {
	attrs []Attribute
	owner *Type
}

func newAttributeCollection(attrs []Attribute) *AttributeCollection {
	return &AttributeCollection{attrs: attrs}
}

// Len returns the number of attributes.
func (c *AttributeCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.attrs)
}

// At returns the attribute at index i.
func (c *AttributeCollection) At(i int) Attribute {
	return c.attrs[i]
}

// Get returns the attribute with the given id from this collection only.
func (c *AttributeCollection) Get(id string) (Attribute, bool) {
	if c == nil {
		return nil, false
	}
	for _, a := range c.attrs {
		if a.AttributeID() == id {
			return a, true
		}
	}
	return nil, false
}

// Has reports whether this collection carries the given attribute id.
func (c *AttributeCollection) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// GetWithParents returns the attribute with the given id, searching this
// collection first and then, for type-level collections, the owning type's
// parent chain depth-first.
func (c *AttributeCollection) GetWithParents(id string) (Attribute, bool) {
	if c == nil {
		return nil, false
	}
	if a, ok := c.Get(id); ok {
		return a, true
	}
	if c.owner == nil {
		return nil, false
	}
	for _, p := range c.owner.parents {
		pt := p.typ()
		if pt == nil {
			continue
		}
		if a, ok := pt.Attributes().GetWithParents(id); ok {
			return a, true
		}
	}
	return nil, false
}

// HasWithParents reports whether the id is present here or on an ancestor.
func (c *AttributeCollection) HasWithParents(id string) bool {
	_, ok := c.GetWithParents(id)
	return ok
}

// AttrOf returns the first attribute of concrete type T in the collection.
func AttrOf[T Attribute](c *AttributeCollection) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	for _, a := range c.attrs {
		if t, ok := a.(T); ok {
			return t, true
		}
	}
	return zero, false
}

// TypeAttrOf returns the first attribute of concrete type T on the type,
// optionally searching the parent chain.
func TypeAttrOf[T Attribute](t *Type, checkParents bool) (T, bool) {
	var zero T
	if t == nil {
		return zero, false
	}
	if a, ok := AttrOf[T](t.Attributes()); ok {
		return a, true
	}
	if !checkParents {
		return zero, false
	}
	for _, p := range t.parents {
		pt := p.typ()
		if pt == nil {
			continue
		}
		if a, ok := TypeAttrOf[T](pt, true); ok {
			return a, true
		}
	}
	return zero, false
}

// Attribute ids. Applications defining their own attributes must not reuse
// these.
const (
	AttrAllowNoProperties       = "AllowNoProperties"
	AttrCategory                = "Category"
	AttrCommandLineArg          = "CommandLineArg"
	AttrCustomSerializeProperty = "CustomSerializeProperty"
	AttrCustomSerializeType     = "CustomSerializeType"
	AttrDeprecated              = "Deprecated"
	AttrDescription             = "Description"
	AttrDisableCommandLineArgs  = "DisableCommandLineArgs"
	AttrDisableReflectionCheck  = "DisableReflectionCheck"
	AttrDisplayName             = "DisplayName"
	AttrDoNotEdit               = "DoNotEdit"
	AttrDoNotSerialize          = "DoNotSerialize"
	AttrDoNotSerializeIfEqual   = "DoNotSerializeIfEqualToSimpleType"
	AttrDoNotSerializeIf        = "DoNotSerializeIf"
	AttrIfDeserializedSetTrue   = "IfDeserializedSetTrue"
	AttrNotRequired             = "NotRequired"
	AttrPolymorphicKey          = "PolymorphicKey"
	AttrPostSerializeType       = "PostSerializeType"
	AttrRange                   = "Range"
	AttrRemarks                 = "Remarks"
)

// AllowNoProperties permits generic serialization of a type with zero
// properties across its hierarchy, which is otherwise treated as an error.
type AllowNoProperties struct{}

func (AllowNoProperties) AttributeID() string { return AttrAllowNoProperties }

// Category groups a property for presentation.
type Category struct{ Name string }

func (Category) AttributeID() string { return AttrCategory }

// CommandLineArg binds a static property to the process command line. A
// non-empty Name makes a named flag; otherwise Position selects a positional
// slot. ValueLabel names the value in help output. Prefix marks a
// single-letter flag consumed as -Xkey=value into a table property.
// Terminator marks the positional that stops argument consumption.
type CommandLineArg struct {
	Name       string
	Position   int
	ValueLabel string
	Required   bool
	Prefix     bool
	Terminator bool
}

func (CommandLineArg) AttributeID() string { return AttrCommandLineArg }

// CustomSerializeProperty replaces the default traversal of one property
// with named methods on the owning type. Either method name may be empty,
// keeping the default behavior for that direction. Signatures:
//
//	func (o *T) Ser(ctx *reflection.Context) *datastore.Node        // nil = failure
//	func (o *T) Deser(ctx *reflection.Context, n *datastore.Node) bool
type CustomSerializeProperty struct {
	SerializeMethod   string
	DeserializeMethod string
}

func (CustomSerializeProperty) AttributeID() string { return AttrCustomSerializeProperty }

// CustomSerializeType replaces the default generic traversal of the whole
// type with named methods, using the same signatures as
// CustomSerializeProperty. The methods may re-enter the default traversal
// via GenericSerializeInto / GenericDeserializeInto.
type CustomSerializeType struct {
	SerializeMethod   string
	DeserializeMethod string
}

func (CustomSerializeType) AttributeID() string { return AttrCustomSerializeType }

// Deprecated marks a property that is neither written nor read, but whose
// presence in input data is not an error.
type Deprecated struct{}

func (Deprecated) AttributeID() string { return AttrDeprecated }

// Description carries human-readable documentation, surfaced in CLI help
// and the registry explorer.
type Description struct{ Text string }

func (Description) AttributeID() string { return AttrDescription }

// DisableCommandLineArgs excludes a named type's properties from command
// line gathering.
type DisableCommandLineArgs struct{ TypeName string }

func (DisableCommandLineArgs) AttributeID() string { return AttrDisableCommandLineArgs }

// DisableReflectionCheck suppresses the undefined-property check for input
// tables deserialized into this type.
type DisableReflectionCheck struct{}

func (DisableReflectionCheck) AttributeID() string { return AttrDisableReflectionCheck }

// DisplayName overrides a property's presentation name.
type DisplayName struct{ Name string }

func (DisplayName) AttributeID() string { return AttrDisplayName }

// DoNotEdit marks a property read-only for editing surfaces.
type DoNotEdit struct{}

func (DoNotEdit) AttributeID() string { return AttrDoNotEdit }

// DoNotSerialize excludes a property from serialization entirely.
type DoNotSerialize struct{}

func (DoNotSerialize) AttributeID() string { return AttrDoNotSerialize }

// DoNotSerializeIfEqualToSimpleType skips writing a property whose current
// value equals Value, compared by simple-type kind. All integral kinds
// except uint64 compare as int64.
type DoNotSerializeIfEqualToSimpleType struct{ Value Any }

func (DoNotSerializeIfEqualToSimpleType) AttributeID() string { return AttrDoNotSerializeIfEqual }

// DoNotSerializeIf skips writing a property when the named method on the
// owning type returns true. Signature: func (o *T) Method() bool.
type DoNotSerializeIf struct{ MethodName string }

func (DoNotSerializeIf) AttributeID() string { return AttrDoNotSerializeIf }

// IfDeserializedSetTrue sets the named sibling boolean property to true
// after this property deserializes successfully.
type IfDeserializedSetTrue struct{ PropertyName string }

func (IfDeserializedSetTrue) AttributeID() string { return AttrIfDeserializedSetTrue }

// NotRequired opts a property (or, on a type, all of its properties) out of
// the required-by-default deserialization check.
type NotRequired struct{}

func (NotRequired) AttributeID() string { return AttrNotRequired }

// PolymorphicKey names the table key under which the concrete type's
// registered name is written during serialization and read back to pick the
// concrete type during deserialization. Default, when non-empty, names the
// type to instantiate when the key is absent from input.
type PolymorphicKey struct {
	Key     string
	Default string
}

func (PolymorphicKey) AttributeID() string { return AttrPolymorphicKey }

// PostSerializeType invokes the named method on the object after generic
// serialization or deserialization of the concrete frame completes.
// Signature: func (o *T) Method() (optionally returning bool).
type PostSerializeType struct {
	SerializeMethod   string
	DeserializeMethod string
}

func (PostSerializeType) AttributeID() string { return AttrPostSerializeType }

// Range documents the valid numeric range of a property.
type Range struct{ Min, Max float64 }

func (Range) AttributeID() string { return AttrRange }

// Remarks carries extended help text for command line arguments.
type Remarks struct{ Text string }

func (Remarks) AttributeID() string { return AttrRemarks }
