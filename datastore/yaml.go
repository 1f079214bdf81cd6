package datastore

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses a YAML document into a node tree. Mapping keys must be
// strings; timestamps become RFC 3339 strings.
func ParseYAML(data []byte) (*Node, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("datastore: invalid YAML: %w", err)
	}
	return fromDecodedValue(v)
}

// fromDecodedValue converts the generic output of the YAML/TOML/CBOR
// decoders to nodes.
func fromDecodedValue(v any) (*Node, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return Uint(uint64(val)), nil
	case uint8:
		return Uint(uint64(val)), nil
	case uint16:
		return Uint(uint64(val)), nil
	case uint32:
		return Uint(uint64(val)), nil
	case uint64:
		return Uint(val), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case time.Time:
		return String(val.Format(time.RFC3339)), nil
	case []any:
		out := NewArray()
		for _, e := range val {
			n, err := fromDecodedValue(e)
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
			n, err := fromDecodedValue(e)
			if err != nil {
				return nil, err
			}
			out.TableSet(k, n)
		}
		return out, nil
	case map[any]any:
		out := NewTable()
		for k, e := range val {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("datastore: table keys must be strings, got %T", k)
			}
			n, err := fromDecodedValue(e)
			if err != nil {
				return nil, err
			}
			out.TableSet(ks, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("datastore: unsupported value %T", v)
	}
}
