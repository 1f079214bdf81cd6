package datastore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// eraseKey is the JSON spelling of an erase marker: an object with exactly
// this one key set to true. It only appears in overlay patch documents.
const eraseKey = "$erase"

// MarshalJSON implements json.Marshaler. Tables marshal with sorted keys.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Kind() {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return strconv.AppendBool(nil, n.b), nil
	case KindInt64:
		return strconv.AppendInt(nil, n.i, 10), nil
	case KindUint64:
		return strconv.AppendUint(nil, n.u, 10), nil
	case KindFloat64:
		return json.Marshal(n.f)
	case KindString:
		return json.Marshal(n.s)
	case KindArray:
		return json.Marshal(n.a)
	case KindTable:
		return json.Marshal(n.t)
	case KindSpecialErase:
		return []byte(`{"` + eraseKey + `":true}`), nil
	default:
		return nil, fmt.Errorf("datastore: cannot marshal node kind %s", n.Kind())
	}
}

// ToJSON renders the node as JSON, optionally indented.
func (n *Node) ToJSON(indent bool) (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	if !indent {
		return string(data), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseJSON parses a single JSON document into a node tree. Numbers become
// Int64 when they fit, then UInt64, then Float64.
func ParseJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("datastore: invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("datastore: trailing data after JSON document")
	}
	return fromJSONValue(v)
}

func fromJSONValue(v any) (*Node, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		return numberNode(val.String()), nil
	case []any:
		out := NewArray()
		for _, e := range val {
			n, err := fromJSONValue(e)
			if err != nil {
				return nil, err
			}
			out.ArrayAppend(n)
		}
		return out, nil
	case map[string]any:
		if isEraseObject(val) {
			return Erase(), nil
		}
		out := NewTable()
		for k, e := range val {
			n, err := fromJSONValue(e)
			if err != nil {
				return nil, err
			}
			out.TableSet(k, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("datastore: unsupported JSON value %T", v)
	}
}

func isEraseObject(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	b, ok := m[eraseKey].(bool)
	return ok && b
}

// numberNode converts a decimal literal to the narrowest numeric node.
func numberNode(s string) *Node {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Uint(u)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unreachable for output of a JSON tokenizer; keep the value anyway.
		return Float(0)
	}
	return Float(f)
}
