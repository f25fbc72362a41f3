// Package keypath addresses nested locations in JSON-like object trees.
//
// A key path is an ordered list of string segments parsed from a dotted
// string, e.g. "nested.name" -> ["nested", "name"]. Reads are deliberately
// lenient: a missing key or a non-object parent anywhere along the path
// yields Absent rather than an error, because optional nested structures
// are the common case in real payloads. Writes create intermediate objects
// as needed and never destroy sibling keys.
//
// # Resolution outcomes
//
// Reading a path distinguishes three situations:
//
//   - value present (possibly JSON null, i.e. a nil value)
//   - key missing at some level
//   - parent value not traversable (a string where an object was expected)
//
// The last two collapse into Absent. Present with a nil value is how JSON
// null is reported, and callers must treat it differently from Absent.
package keypath
