// Package extractors provides implementations of the ContentExtractor
// interface for the supported document classifications, plus a router
// that dispatches to the right implementation by classification.
//
// Extractors report absence rather than failing: a document that parses
// but yields no usable fields produces a nil result and a nil error.
package extractors
