package datastore

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	binaryEncMode cbor.EncMode
	binaryDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("datastore: cbor encode mode: %v", err))
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("datastore: cbor decode mode: %v", err))
	}
	binaryEncMode = em
	binaryDecMode = dm
}

// EncodeBinary serializes the node tree to canonical CBOR.
func (n *Node) EncodeBinary() ([]byte, error) {
	data, err := binaryEncMode.Marshal(n.toGeneric())
	if err != nil {
		return nil, fmt.Errorf("datastore: binary encode: %w", err)
	}
	return data, nil
}

// DecodeBinary parses a CBOR document produced by EncodeBinary. Positive
// integers decode as UInt64 nodes; Equal treats them as equal to the
// same-valued Int64.
func DecodeBinary(data []byte) (*Node, error) {
	var v any
	if err := binaryDecMode.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("datastore: binary decode: %w", err)
	}
	return fromDecodedValue(v)
}

func (n *Node) toGeneric() any {
	switch n.Kind() {
	case KindBool:
		return n.b
	case KindInt64:
		return n.i
	case KindUint64:
		return n.u
	case KindFloat64:
		return n.f
	case KindString:
		return n.s
	case KindArray:
		out := make([]any, len(n.a))
		for i, e := range n.a {
			out[i] = e.toGeneric()
		}
		return out
	case KindTable:
		out := make(map[string]any, len(n.t))
		for k, v := range n.t {
			out[k] = v.toGeneric()
		}
		return out
	case KindSpecialErase:
		return map[string]any{eraseKey: true}
	default:
		return nil
	}
}
