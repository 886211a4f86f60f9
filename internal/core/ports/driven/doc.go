// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Extractor / ExtractorRouter: file content extraction
//   - VectorStore: vector persistence and search
//   - EmbeddingService: vector embedding generation
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
//   - JobStore: job and report persistence. Without it, jobs are not
//     tracked but ingestion still works.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
