package driven

import "github.com/typetide/typetide/internal/core/domain"

// Config is the full application configuration.
type Config struct {
	// Inference configures the AI styling backend.
	Inference domain.InferenceSettings

	// Resolver configures the tiered resolver.
	Resolver domain.ResolverSettings

	// Orchestrator configures the input orchestrator.
	Orchestrator domain.OrchestratorSettings

	// Loader configures the font asset loader.
	Loader domain.LoaderSettings

	// CatalogPath points at the font catalog definition. Empty uses the
	// built-in catalog.
	CatalogPath string

	// VettedPath points at the vetted styles definition. Empty disables
	// the vetted tier.
	VettedPath string

	// DataDir holds the persistent cache database. Empty uses the
	// default under the user's home directory.
	DataDir string
}

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and defaults.
type ConfigStore interface {
	// Load reads the configuration, applying defaults for absent fields.
	Load() (Config, error)

	// Save persists the configuration.
	Save(cfg Config) error

	// Path returns the configuration file path.
	Path() string
}
