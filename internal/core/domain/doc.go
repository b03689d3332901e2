// Package domain defines the core business entities for Casetrail.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A unit of evidence with classification and fingerprint
//   - Chunk: A token-budgeted, boundary-respecting segment of a document
//   - Relationship: A scored, undirected edge between two documents
//   - TimelineEvent: A temporally annotated event derived from a document
//   - ValidationReport: The structured result of pre-processing checks
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
