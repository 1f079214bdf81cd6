package datastore

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// ParseTOML parses a TOML document into a table node. Datetimes become
// RFC 3339 strings.
func ParseTOML(data []byte) (*Node, error) {
	var v map[string]any
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("datastore: invalid TOML: %w", err)
	}
	return fromDecodedValue(v)
}
