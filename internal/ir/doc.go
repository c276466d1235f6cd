// Package ir defines the backend-neutral intermediate representation for
// comprehensions, generator expressions, and reductions.
//
// IR values are constructed once by the parser, annotated once by the type
// inferencer, optionally rewritten by the SQL optimizer, and consumed
// read-only by exactly one renderer invocation. Nothing in this package
// mutates shared substructure: passes that change the tree return a new
// value (see Comp.Clone).
//
// The package also provides RFC 8785 canonical JSON serialization so the
// annotated IR can be snapshotted byte-for-byte in golden files.
package ir
