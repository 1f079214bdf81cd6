package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/facet-dev/facet/datastore"
)

// File formats the CLI understands, keyed by extension. YAML and TOML are
// ingest-only; the store writes its native JSON or binary CBOR.
var (
	readFormats  = []string{"json", "yaml", "toml", "cbor"}
	writeFormats = []string{"json", "cbor"}
)

// formatOf maps a path's extension to a format name. ".yml" counts as yaml.
func formatOf(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", true
	case ".yaml", ".yml":
		return "yaml", true
	case ".toml":
		return "toml", true
	case ".cbor":
		return "cbor", true
	}
	return "", false
}

// readNodeFile loads a datastore tree from path, picking the parser by
// extension. The returned format names the parser that ran, when known.
func readNodeFile(path string) (*datastore.Node, string, error) {
	format, ok := formatOf(path)
	if !ok {
		return nil, "", fmt.Errorf("cannot tell the format of %q from its extension", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, format, err
	}

	var n *datastore.Node
	switch format {
	case "json":
		n, err = datastore.ParseJSON(data)
	case "yaml":
		n, err = datastore.ParseYAML(data)
	case "toml":
		n, err = datastore.ParseTOML(data)
	case "cbor":
		n, err = datastore.DecodeBinary(data)
	}
	if err != nil {
		return nil, format, err
	}
	return n, format, nil
}

// writeNodeFile writes a datastore tree to path as JSON or CBOR by
// extension.
func writeNodeFile(path string, n *datastore.Node, indent bool) (string, error) {
	format, ok := formatOf(path)
	if !ok {
		return "", fmt.Errorf("cannot tell the format of %q from its extension", path)
	}

	var data []byte
	switch format {
	case "json":
		s, err := n.ToJSON(indent)
		if err != nil {
			return format, err
		}
		data = []byte(s + "\n")
	case "cbor":
		b, err := n.EncodeBinary()
		if err != nil {
			return format, err
		}
		data = b
	default:
		return format, fmt.Errorf("%s output is not supported (use %s)", format, strings.Join(writeFormats, " or "))
	}

	return format, os.WriteFile(path, data, 0644)
}

// nodeStats summarizes a datastore tree for display.
type nodeStats struct {
	total  int
	depth  int
	byKind map[datastore.Kind]int
}

// statKinds fixes the display order of per-kind counts.
var statKinds = []datastore.Kind{
	datastore.KindNull,
	datastore.KindBool,
	datastore.KindInt64,
	datastore.KindUint64,
	datastore.KindFloat64,
	datastore.KindString,
	datastore.KindArray,
	datastore.KindTable,
	datastore.KindSpecialErase,
}

func collectStats(n *datastore.Node) nodeStats {
	st := nodeStats{byKind: make(map[datastore.Kind]int)}
	walkStats(n, 1, &st)
	return st
}

func walkStats(n *datastore.Node, depth int, st *nodeStats) {
	st.total++
	st.byKind[n.Kind()]++
	if depth > st.depth {
		st.depth = depth
	}

	switch {
	case n.IsArray():
		count, _ := n.ArrayLen()
		for i := 0; i < count; i++ {
			if child, ok := n.ArrayGet(i); ok {
				walkStats(child, depth+1, st)
			}
		}
	case n.IsTable():
		n.TableRange(func(_ string, child *datastore.Node) bool {
			walkStats(child, depth+1, st)
			return true
		})
	}
}
