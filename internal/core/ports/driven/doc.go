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
//   - EmbeddingService: Turns text into fixed-length vectors
//   - VectorIndex: Persisted nearest-neighbour index of chunk vectors
//   - LLMService: Generates the answer text from a prompt
//   - PromptStore: Provides the answer prompt template
//   - ConfigStore: Application configuration
//
// # Ingestion Interfaces
//
// Only `medibot ingest` needs these:
//
//   - Connector: Fetches raw documents from one kind of source
//   - Normaliser: Extracts text from raw bytes of one MIME type
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - PostProcessor: Cleans and chunks a normalised document
//   - Catalog: Records ingested documents, chunks and runs
//   - PageCache: Caches fetched web pages between runs
//   - SchedulerStore: Persists the refresh task state
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
