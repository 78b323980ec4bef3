// Package ast holds the abstract syntax tree of OCA (Overlay Capture
// Architecture) documents and the codec between that tree and its wire form.
//
// A document is an ordered script of commands. Each command targets an
// object kind: a capture base, a bundle, or one of the overlay types. The
// package decodes payload trees (parsed from JSON or YAML, key order
// preserved) into immutable values, validating structure on the way, and
// encodes those values back. Decode failures are *Error or
// *RefValueParsingError values carrying a machine-matchable kind.
//
// Lookup tables are package-level and read-only after init, so every
// function here is safe for concurrent use.
package ast
