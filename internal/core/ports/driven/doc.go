// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - CacheStore: Persistent variant/detection cache (opaque key-value store)
//   - VettedStore: Curated, human-approved variant mapping
//   - FontDelivery: Stylesheet fetching from the font delivery service
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - VariantInference: AI styling backend. Without it, unknown words fall
//     back to the default variant and phrase detection is disabled.
//   - ConfigStore: Application configuration persistence.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
