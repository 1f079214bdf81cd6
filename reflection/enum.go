package reflection

// EnumValue is one named constant of a registered enum.
type EnumValue struct {
	name  string
	value int64
	attrs *AttributeCollection
}

func (v EnumValue) Name() string                     { return v.name }
func (v EnumValue) Value() int64                     { return v.value }
func (v EnumValue) Attributes() *AttributeCollection { return v.attrs }

// Enum is the name/value metadata of a registered enum type. Lookups accept
// aliases; reverse lookups always produce the canonical name.
type Enum struct {
	ti      *TypeInfo
	values  []EnumValue
	byName  map[string]int64
	byValue map[int64]string
}

func (e *Enum) TypeInfo() *TypeInfo { return e.ti }

// Values returns the enum's values in registration order. The returned slice
// is shared and must not be mutated.
func (e *Enum) Values() []EnumValue { return e.values }

// Names returns the canonical value names in registration order.
func (e *Enum) Names() []string {
	out := make([]string, len(e.values))
	for i, v := range e.values {
		out[i] = v.name
	}
	return out
}

// TryGetValue resolves a name or alias to its numeric value.
func (e *Enum) TryGetValue(name string) (int64, bool) {
	if e == nil {
		return 0, false
	}
	v, ok := e.byName[name]
	return v, ok
}

// TryGetName resolves a numeric value to its canonical name. When several
// names share a value, the first registered wins.
func (e *Enum) TryGetName(value int64) (string, bool) {
	if e == nil {
		return "", false
	}
	n, ok := e.byValue[value]
	return n, ok
}
