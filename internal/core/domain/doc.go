// Package domain holds medibot's entities and the rules that need no I/O.
//
// A source item travels through these types in order: a connector emits a
// RawDocument, a normaliser turns it into a Document, post-processors cut it
// into Chunks, and the index returns Passages for a question. The ask
// pipeline folds passages into an Answer, and eval scores answers against
// GoldenCases.
//
// Only the standard library may be imported here. Every other package
// depends on domain.
package domain
