package domain

import "time"

// AIProvider identifies an inference backend.
type AIProvider string

// Available inference providers.
const (
	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// InferenceSettings configures the AI styling backend.
type InferenceSettings struct {
	// Provider selects the backend implementation.
	Provider AIProvider

	// APIKey authenticates against the provider.
	APIKey string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Model is the model identifier; empty selects the provider default.
	Model string

	// Timeout bounds a single inference request at the HTTP client level.
	Timeout time.Duration
}

// IsConfigured reports whether inference can be attempted at all.
func (s *InferenceSettings) IsConfigured() bool {
	return s != nil && s.Provider.IsValid() && s.APIKey != ""
}

// ResolverSettings configures the tiered resolver.
type ResolverSettings struct {
	// CapSensitive keys capitalised words separately in the cache.
	CapSensitive bool

	// CacheTTL is the time-to-live for newly written cache entries.
	// Zero stores without expiry.
	CacheTTL time.Duration

	// InferenceTimeout bounds one inference call before falling back to
	// the default variant, so a hung backend can never leave a word
	// loading forever.
	InferenceTimeout time.Duration

	// InferenceRPS rate-limits inference calls; zero disables limiting.
	InferenceRPS float64
}

// OrchestratorSettings configures the input orchestrator.
type OrchestratorSettings struct {
	// Debounce is the quiescence window after the last text change before
	// pending words are processed.
	Debounce time.Duration
}

// LoaderSettings configures the font asset loader.
type LoaderSettings struct {
	// BatchWindow is how long arriving requests coalesce before a flush.
	BatchWindow time.Duration
}

// Default settings values.
const (
	DefaultDebounce         = 300 * time.Millisecond
	DefaultBatchWindow      = 50 * time.Millisecond
	DefaultInferenceTimeout = 15 * time.Second
)
