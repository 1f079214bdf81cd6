package explorer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/facet-dev/facet/reflection"
)

// The descriptor types mirror registry metadata as plain data. They are
// registered like any other type, so responses flow through the same
// serializer the page describes.

type typeList struct {
	Count int32
	Types []typeSummary
}

type typeSummary struct {
	Name        string
	Shape       string
	Properties  int32
	Methods     int32
	Description string
}

type typeDescriptor struct {
	Name          string
	Aliases       []string
	Shape         string
	Description   string
	RegistryIndex int32
	CanNew        bool
	Parents       []string
	Attributes    []attributeDescriptor
	Properties    []propertyDescriptor
	Methods       []methodDescriptor
	EnumValues    []enumValueDescriptor
}

type attributeDescriptor struct {
	ID     string
	Detail string
}

type propertyDescriptor struct {
	Name       string
	Type       string
	Static     bool
	CanRead    bool
	CanWrite   bool
	Attributes []attributeDescriptor
}

type methodDescriptor struct {
	Name    string
	Static  bool
	Params  []string
	Returns string
}

type enumValueDescriptor struct {
	Name        string
	Value       int64
	Description string
}

type statsDescriptor struct {
	Types      int32
	Objects    int32
	Enums      int32
	Arrays     int32
	Tables     int32
	Scalars    int32
	Interfaces int32
	Simple     int32
	Properties int32
	Methods    int32
}

type errorDescriptor struct {
	Error string
}

var descriptorMu sync.Mutex

// ensureDescriptors registers the descriptor types. Reset wipes the registry
// during tests, so registration re-runs whenever the marker type is missing.
func ensureDescriptors() {
	descriptorMu.Lock()
	defer descriptorMu.Unlock()
	if _, ok := reflection.GetType("Explorer.TypeList"); ok {
		return
	}
	reflection.Register[typeList]("Explorer.TypeList").
		Attrs(reflection.Description{Text: "Response body of GET /types."}).
		Register()
	reflection.Register[typeSummary]("Explorer.TypeSummary").
		Attrs(reflection.Description{Text: "One row of the type listing."}).
		Register()
	reflection.Register[typeDescriptor]("Explorer.Type").
		Attrs(reflection.Description{Text: "Response body of GET /types/{name}."}).
		Register()
	reflection.Register[attributeDescriptor]("Explorer.Attribute").Register()
	reflection.Register[propertyDescriptor]("Explorer.Property").Register()
	reflection.Register[methodDescriptor]("Explorer.Method").Register()
	reflection.Register[enumValueDescriptor]("Explorer.EnumValue").Register()
	reflection.Register[statsDescriptor]("Explorer.Stats").
		Attrs(reflection.Description{Text: "Response body of GET /stats."}).
		Register()
	reflection.Register[errorDescriptor]("Explorer.Error").
		Attrs(reflection.Description{Text: "Error response body."}).
		Register()
}

func summarize(t *reflection.Type) typeSummary {
	return typeSummary{
		Name:        t.Name(),
		Shape:       typeShape(t),
		Properties:  int32(t.PropertyCount()),
		Methods:     int32(t.MethodCount()),
		Description: descriptionText(t.Attributes()),
	}
}

func describe(t *reflection.Type) typeDescriptor {
	d := typeDescriptor{
		Name:          t.Name(),
		Aliases:       append([]string(nil), t.Aliases()...),
		Shape:         typeShape(t),
		Description:   descriptionText(t.Attributes()),
		RegistryIndex: int32(t.RegistryIndex()),
		CanNew:        t.CanNew(),
		Attributes:    describeAttrs(t.Attributes()),
	}
	for i := 0; i < t.ParentCount(); i++ {
		d.Parents = append(d.Parents, parentName(t.ParentAt(i)))
	}
	for i := 0; i < t.PropertyCount(); i++ {
		d.Properties = append(d.Properties, describeProperty(t.PropertyAt(i)))
	}
	for i := 0; i < t.MethodCount(); i++ {
		d.Methods = append(d.Methods, describeMethod(t.MethodAt(i)))
	}
	if e, ok := t.TryGetEnum(); ok {
		for _, v := range e.Values() {
			d.EnumValues = append(d.EnumValues, enumValueDescriptor{
				Name:        v.Name(),
				Value:       v.Value(),
				Description: descriptionText(v.Attributes()),
			})
		}
	}
	return d
}

func describeProperty(p *reflection.Property) propertyDescriptor {
	return propertyDescriptor{
		Name:       p.Name(),
		Type:       p.TypeInfo().Name(),
		Static:     p.IsStatic(),
		CanRead:    p.CanRead(),
		CanWrite:   p.CanWrite(),
		Attributes: describeAttrs(p.Attributes()),
	}
}

func describeMethod(m *reflection.Method) methodDescriptor {
	d := methodDescriptor{
		Name:   m.Name(),
		Static: m.IsStatic(),
	}
	for i := 0; i < m.Arity(); i++ {
		d.Params = append(d.Params, m.ParamTypeInfo(i).Name())
	}
	if ret := m.ReturnTypeInfo(); ret != nil {
		d.Returns = ret.Name()
	}
	return d
}

func describeAttrs(c *reflection.AttributeCollection) []attributeDescriptor {
	out := make([]attributeDescriptor, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		a := c.At(i)
		out = append(out, attributeDescriptor{ID: a.AttributeID(), Detail: attrDetail(a)})
	}
	return out
}

// attrDetail renders an attribute's payload fields. Marker attributes come
// out empty.
func attrDetail(a reflection.Attribute) string {
	// The comparison value is an Any; its innards are not printable.
	if _, ok := a.(reflection.DoNotSerializeIfEqualToSimpleType); ok {
		return ""
	}
	s := fmt.Sprintf("%+v", a)
	s = strings.TrimPrefix(s, "{")
	return strings.TrimSuffix(s, "}")
}

func descriptionText(c *reflection.AttributeCollection) string {
	if d, ok := reflection.AttrOf[reflection.Description](c); ok {
		return d.Text
	}
	return ""
}

// typeShape classifies a registered type the way the serializer dispatches
// on it: a scalar handler wins over derived container adapters.
func typeShape(t *reflection.Type) string {
	if _, ok := t.TryGetEnum(); ok {
		return "enum"
	}
	if _, ok := t.ScalarHandler(); ok {
		return "scalar"
	}
	if _, ok := t.TryGetArray(); ok {
		return "array"
	}
	if _, ok := t.TryGetTable(); ok {
		return "table"
	}
	if t.TypeInfo().IsInterface() {
		return "interface"
	}
	if k := t.TypeInfo().SimpleKind(); k != reflection.ComplexKind {
		return k.String()
	}
	return "object"
}

// parentName prefers the registered name; unregistered parents fall back to
// the Go type spelling.
func parentName(p reflection.Parent) string {
	if t := p.TypeInfo().Type(); t != nil {
		return t.Name()
	}
	return p.TypeInfo().Name()
}
