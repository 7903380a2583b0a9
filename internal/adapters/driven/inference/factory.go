// Package inference provides factory functions for creating variant
// inference adapters.
package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/typetide/typetide/internal/adapters/driven/inference/anthropic"
	"github.com/typetide/typetide/internal/adapters/driven/inference/openai"
	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateService creates the appropriate inference service based on settings.
// Returns nil if inference is not configured; the resolver treats a nil
// service as offline and falls back to the default variant.
func CreateService(settings *domain.InferenceSettings) (driven.VariantInference, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return openai.NewService(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropic.NewService(anthropic.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", settings.Provider)
	}
}

// CreateAndValidateService creates an inference service and validates
// connectivity. Returns the service if successful, or an error with guidance.
func CreateAndValidateService(settings *domain.InferenceSettings) (driven.VariantInference, error) {
	svc, err := CreateService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'typetide config' to fix",
			domain.ErrInferenceUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'typetide config' to fix",
			domain.ErrInferenceUnavailable, err)
	}

	return svc, nil
}

// ValidateConfig validates an inference configuration by creating a service
// and pinging it. Intended for credential checks on configuration.
func ValidateConfig(settings *domain.InferenceSettings) error {
	svc, err := CreateService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
