// Package services implements the driving port interfaces.
// Services contain the core resolution pipeline and orchestrate
// calls to driven ports (adapters):
//
//   - TieredResolver: vetted > cache > inference, with catalog validation
//   - PhraseService: inference-backed phrase detection with its own cache
//   - FontLoader: batched, deduplicated font asset loading
//   - Orchestrator: debounced, cancellation-aware resolution of typed text
package services
