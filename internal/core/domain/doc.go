// Package domain defines the core business entities for LexSearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested statute with resolved identity
//   - Chunk: The unit of retrieval, enriched with hierarchical context
//   - Chapter/Article/Clause/Point: The structural parse tree
//   - SearchOptions/SearchResult: The retrieval query surface
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
