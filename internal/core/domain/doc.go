// Package domain defines the core business entities for Axchat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Section: A heading-delimited subdivision of a corpus document
//   - Chunk: A bounded, overlapping slice of section text; the atomic retrieval unit
//   - Reference: A ranked retrieval result handed back to callers
//   - AccessScope: Per-request visibility derived from caller roles
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
