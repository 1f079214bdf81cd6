// Package explorer serves the reflection registry over HTTP for debugging:
// GET /types lists every registered type, GET /types/{name} returns one
// type's full metadata (the name may be an alias), and GET /stats summarizes
// the registry. Responses are built as descriptor values and serialized
// through the reflection engine itself, so the descriptor types appear in
// the listing alongside everything else.
//
// The surface exposes type layout and attribute contents; mount it on
// internal ports only.
package explorer
