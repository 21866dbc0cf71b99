// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Corpus: Enumerates and reads markdown files under the corpus root
//   - RetrievalIndex: Persistent full-text index with scoped ranked search
//   - Generator: Text generation with a model-listing liveness probe
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PromptStore: Customisable prompt templates with embedded defaults
//   - CorpusWatcher: Staleness hints between index builds
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
