// Package datastore implements the hierarchical value store targeted by the
// reflection serializer: a tree of array, table, and scalar nodes.
//
// A Node is either a scalar (null, bool, int64, uint64, float64, string), an
// array of nodes, a string-keyed table of nodes, or an erase marker used by
// overlay patches. The native text format is JSON; YAML and TOML documents
// can be ingested, and a CBOR binary codec is provided for persistence.
//
// Nodes are plain mutable values with no internal locking. Table iteration
// and printing are deterministic (key-sorted).
package datastore
