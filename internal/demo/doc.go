// Package demo registers a small scene-graph domain with the reflection
// registry: a Scene of entities carrying polymorphic components, a
// difficulty enum, a custom-coded color scalar, and the engine's command
// line bindings. The facet CLI loads it so every subsystem has live types
// to work against; it doubles as a worked example of the attribute surface.
package demo
