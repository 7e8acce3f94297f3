// Package domain defines the core entities of the OCM extractor.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawRecord: A station entry as published in the upstream export
//   - ConnectionType, Country, Operator: Reference entities
//   - ReferenceTable: An immutable ID-keyed lookup of reference entities
//   - EnrichedRecord: A RawRecord with its references resolved
//   - MirrorLayout: Where the local mirror keeps its data
//   - Station: The normalised model handed to the station store
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
