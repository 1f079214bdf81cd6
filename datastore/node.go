package datastore

import (
	"math"
	"sort"
)

// Kind identifies the shape of a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindUint64
	KindFloat64
	KindString
	KindArray
	KindTable
	// KindSpecialErase marks a key for deletion when a patch table is
	// applied over a base table. See ApplyOverlay.
	KindSpecialErase
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Boolean"
	case KindInt64:
		return "Int64"
	case KindUint64:
		return "UInt64"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindTable:
		return "Table"
	case KindSpecialErase:
		return "SpecialErase"
	default:
		return "Unknown"
	}
}

// IsScalar reports whether the kind is a leaf value (not array/table/erase).
func (k Kind) IsScalar() bool {
	switch k {
	case KindBool, KindInt64, KindUint64, KindFloat64, KindString, KindNull:
		return true
	default:
		return false
	}
}

// Node is one value in the store. The zero value is a null node.
type Node struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	a    []*Node
	t    map[string]*Node
}

// Null returns a new null node.
func Null() *Node { return &Node{kind: KindNull} }

// Bool returns a new boolean node.
func Bool(v bool) *Node { return &Node{kind: KindBool, b: v} }

// Int returns a new signed integer node.
func Int(v int64) *Node { return &Node{kind: KindInt64, i: v} }

// Uint returns a new unsigned integer node.
func Uint(v uint64) *Node { return &Node{kind: KindUint64, u: v} }

// Float returns a new floating-point node.
func Float(v float64) *Node { return &Node{kind: KindFloat64, f: v} }

// String returns a new string node.
func String(v string) *Node { return &Node{kind: KindString, s: v} }

// NewArray returns a new array node holding the given elements.
func NewArray(elems ...*Node) *Node {
	a := make([]*Node, len(elems))
	copy(a, elems)
	return &Node{kind: KindArray, a: a}
}

// NewTable returns a new empty table node.
func NewTable() *Node {
	return &Node{kind: KindTable, t: make(map[string]*Node)}
}

// Erase returns an erase marker node. It is only meaningful as a table value
// inside an overlay patch.
func Erase() *Node { return &Node{kind: KindSpecialErase} }

// Kind returns the node's kind. A nil node reports KindNull.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

func (n *Node) IsNull() bool  { return n.Kind() == KindNull }
func (n *Node) IsArray() bool { return n.Kind() == KindArray }
func (n *Node) IsTable() bool { return n.Kind() == KindTable }
func (n *Node) IsErase() bool { return n.Kind() == KindSpecialErase }

// AsBool reads a boolean value. Fails for any other kind.
func (n *Node) AsBool() (bool, bool) {
	if n == nil || n.kind != KindBool {
		return false, false
	}
	return n.b, true
}

// AsString reads a string value. Fails for any other kind.
func (n *Node) AsString() (string, bool) {
	if n == nil || n.kind != KindString {
		return "", false
	}
	return n.s, true
}

// AsInt64 reads a numeric value as int64. Unsigned and float nodes convert
// when the value is exactly representable.
func (n *Node) AsInt64() (int64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.kind {
	case KindInt64:
		return n.i, true
	case KindUint64:
		if n.u <= math.MaxInt64 {
			return int64(n.u), true
		}
	case KindFloat64:
		// Upper bound is exclusive: float64(MaxInt64) rounds up to 2^63.
		if n.f == math.Trunc(n.f) && n.f >= math.MinInt64 && n.f < 1<<63 {
			return int64(n.f), true
		}
	}
	return 0, false
}

// AsUint64 reads a numeric value as uint64. Signed and float nodes convert
// when the value is exactly representable.
func (n *Node) AsUint64() (uint64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.kind {
	case KindUint64:
		return n.u, true
	case KindInt64:
		if n.i >= 0 {
			return uint64(n.i), true
		}
	case KindFloat64:
		if n.f == math.Trunc(n.f) && n.f >= 0 && n.f < 1<<64 {
			return uint64(n.f), true
		}
	}
	return 0, false
}

// AsFloat64 reads a numeric value as float64. Integer nodes convert with the
// usual float64 rounding.
func (n *Node) AsFloat64() (float64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.kind {
	case KindFloat64:
		return n.f, true
	case KindInt64:
		return float64(n.i), true
	case KindUint64:
		return float64(n.u), true
	}
	return 0, false
}

// ArrayLen returns the element count of an array node.
func (n *Node) ArrayLen() (int, bool) {
	if n == nil || n.kind != KindArray {
		return 0, false
	}
	return len(n.a), true
}

// ArrayGet returns the element at index i.
func (n *Node) ArrayGet(i int) (*Node, bool) {
	if n == nil || n.kind != KindArray || i < 0 || i >= len(n.a) {
		return nil, false
	}
	return n.a[i], true
}

// ArraySet stores v at index i, growing the array with null nodes as needed.
func (n *Node) ArraySet(i int, v *Node) bool {
	if n == nil || n.kind != KindArray || i < 0 || v == nil {
		return false
	}
	for len(n.a) <= i {
		n.a = append(n.a, Null())
	}
	n.a[i] = v
	return true
}

// ArrayAppend appends v to an array node.
func (n *Node) ArrayAppend(v *Node) bool {
	if n == nil || n.kind != KindArray || v == nil {
		return false
	}
	n.a = append(n.a, v)
	return true
}

// ResizeArray sets the element count, truncating or padding with null nodes.
func (n *Node) ResizeArray(size int) bool {
	if n == nil || n.kind != KindArray || size < 0 {
		return false
	}
	if size <= len(n.a) {
		n.a = n.a[:size]
		return true
	}
	for len(n.a) < size {
		n.a = append(n.a, Null())
	}
	return true
}

// TableLen returns the entry count of a table node.
func (n *Node) TableLen() (int, bool) {
	if n == nil || n.kind != KindTable {
		return 0, false
	}
	return len(n.t), true
}

// TableGet returns the value stored under key.
func (n *Node) TableGet(key string) (*Node, bool) {
	if n == nil || n.kind != KindTable {
		return nil, false
	}
	v, ok := n.t[key]
	return v, ok
}

// TableSet stores v under key.
func (n *Node) TableSet(key string, v *Node) bool {
	if n == nil || n.kind != KindTable || v == nil {
		return false
	}
	n.t[key] = v
	return true
}

// TableDelete removes key. Reports whether the key was present.
func (n *Node) TableDelete(key string) bool {
	if n == nil || n.kind != KindTable {
		return false
	}
	_, ok := n.t[key]
	delete(n.t, key)
	return ok
}

// TableKeys returns the table's keys in sorted order.
func (n *Node) TableKeys() []string {
	if n == nil || n.kind != KindTable {
		return nil
	}
	keys := make([]string, 0, len(n.t))
	for k := range n.t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TableRange calls fn for each entry in key-sorted order until fn returns
// false. Reports whether the node is a table.
func (n *Node) TableRange(fn func(key string, v *Node) bool) bool {
	if n == nil || n.kind != KindTable {
		return false
	}
	for _, k := range n.TableKeys() {
		if !fn(k, n.t[k]) {
			break
		}
	}
	return true
}

// Copy returns a deep copy of the node.
func (n *Node) Copy() *Node {
	if n == nil {
		return Null()
	}
	out := &Node{kind: n.kind, b: n.b, i: n.i, u: n.u, f: n.f, s: n.s}
	switch n.kind {
	case KindArray:
		out.a = make([]*Node, len(n.a))
		for i, e := range n.a {
			out.a[i] = e.Copy()
		}
	case KindTable:
		out.t = make(map[string]*Node, len(n.t))
		for k, v := range n.t {
			out.t[k] = v.Copy()
		}
	}
	return out
}

// Equal reports structural equality. Numeric nodes compare by value across
// int64/uint64/float64 kinds (float comparisons use float64 conversion).
func Equal(a, b *Node) bool {
	ka, kb := a.Kind(), b.Kind()
	if isNumeric(ka) && isNumeric(kb) {
		return numericEqual(a, b)
	}
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull, KindSpecialErase:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.a) != len(b.a) {
			return false
		}
		for i := range a.a {
			if !Equal(a.a[i], b.a[i]) {
				return false
			}
		}
		return true
	case KindTable:
		if len(a.t) != len(b.t) {
			return false
		}
		for k, av := range a.t {
			bv, ok := b.t[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// Equal reports structural equality with other. See the package function.
func (n *Node) Equal(other *Node) bool { return Equal(n, other) }

func isNumeric(k Kind) bool {
	return k == KindInt64 || k == KindUint64 || k == KindFloat64
}

func numericEqual(a, b *Node) bool {
	if a.kind == b.kind {
		switch a.kind {
		case KindInt64:
			return a.i == b.i
		case KindUint64:
			return a.u == b.u
		default:
			return a.f == b.f
		}
	}
	// Mixed signed/unsigned compares exactly; anything involving a float
	// compares through float64.
	switch {
	case a.kind == KindInt64 && b.kind == KindUint64:
		return a.i >= 0 && uint64(a.i) == b.u
	case a.kind == KindUint64 && b.kind == KindInt64:
		return b.i >= 0 && uint64(b.i) == a.u
	case a.kind == KindFloat64:
		f, ok := b.AsFloat64()
		return ok && f == a.f
	default:
		f, ok := a.AsFloat64()
		return ok && f == b.f
	}
}

// String renders the node as compact JSON, for debugging and logs.
func (n *Node) String() string {
	s, err := n.ToJSON(false)
	if err != nil {
		return "<unprintable>"
	}
	return s
}
