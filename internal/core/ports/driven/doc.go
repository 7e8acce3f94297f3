// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - MirrorTool: Runs the git steps that clone and refresh the mirror
//   - MirrorState: The mirror working tree (health, reset, read-only FS)
//   - DatasetWriter: Atomic output of the enriched dataset
//   - StationUpdater: Upserts normalised stations
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil where noted by the consuming service:
//
//   - UpstreamInspector: Reports the upstream head for mirror status
//   - LinkScraper, Downloader, CSVReader: Only needed by the French pipeline
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
