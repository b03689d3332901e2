// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentExtractor: Structured field/text extraction per document class
//   - AttachmentStore: Content-addressed deduplicated binary storage
//   - DocumentStore: Document, chunk and timeline event persistence
//   - PostProcessor / PostProcessorPipeline: Chunk production
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Analyzer: Semantic analysis backend. Without it, documents keep
//     their heuristic annotations only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
