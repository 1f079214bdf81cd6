// Package reflection implements a runtime type system for Go values:
// registered types expose named properties, methods, and attributes; array
// and table adapters walk container-shaped members polymorphically; and a
// generic serializer converts live objects to and from datastore node trees
// under attribute-driven control.
//
// Types are registered once, normally from package init functions, via
// Register, RegisterEnum, RegisterScalar, RegisterInterface, or
// RegisterStatic. The registry is append-only while registration runs and
// read-only afterwards; reads from multiple goroutines are safe once
// registration is complete.
//
// All runtime failure paths return booleans or errors. Mismatched types fail
// closed; nothing in this package reinterprets memory.
package reflection
