package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/typetide/typetide/internal/adapters/driven/inference"
	"github.com/typetide/typetide/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application configuration",
	Long: `View and configure the AI provider, timings, and file locations.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the AI provider step by step.`,
	RunE:  runConfigWizard,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configWizardCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if services.Config == nil {
		return errors.New("config store not configured")
	}

	cfg, err := services.Config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Printf("File: %s\n", services.Config.Path())
	cmd.Println()

	cmd.Println("[Inference]")
	if cfg.Inference.Provider != "" {
		cmd.Printf("  Provider: %s\n", cfg.Inference.Provider)
	} else {
		cmd.Printf("  Provider: (not set)\n")
	}
	if cfg.Inference.Model != "" {
		cmd.Printf("  Model: %s\n", cfg.Inference.Model)
	} else {
		cmd.Printf("  Model: (provider default)\n")
	}
	if cfg.Inference.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.Inference.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	if cfg.Inference.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", cfg.Inference.BaseURL)
	}
	status := "configured"
	if !cfg.Inference.IsConfigured() {
		status = "not configured (vetted and cache tiers only)"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Resolver]")
	cmd.Printf("  Cap sensitive: %t\n", cfg.Resolver.CapSensitive)
	cmd.Printf("  Inference timeout: %s\n", cfg.Resolver.InferenceTimeout)
	if cfg.Resolver.CacheTTL > 0 {
		cmd.Printf("  Cache TTL: %s\n", cfg.Resolver.CacheTTL)
	} else {
		cmd.Printf("  Cache TTL: (no expiry)\n")
	}
	cmd.Println()

	cmd.Println("[Timings]")
	cmd.Printf("  Debounce: %s\n", cfg.Orchestrator.Debounce)
	cmd.Printf("  Font batch window: %s\n", cfg.Loader.BatchWindow)
	cmd.Println()

	cmd.Println("[Files]")
	if cfg.CatalogPath != "" {
		cmd.Printf("  Catalog: %s\n", cfg.CatalogPath)
	} else {
		cmd.Printf("  Catalog: (built-in)\n")
	}
	if cfg.VettedPath != "" {
		cmd.Printf("  Vetted styles: %s\n", cfg.VettedPath)
	} else {
		cmd.Printf("  Vetted styles: (disabled)\n")
	}
	cmd.Println()

	if cfg.Inference.IsConfigured() {
		if err := inference.ValidateConfig(&cfg.Inference); err != nil {
			cmd.Printf("Warning: %v\n", err)
			cmd.Println("Run 'typetide config wizard' to fix configuration issues.")
			return nil
		}
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigWizard(cmd *cobra.Command, _ []string) error {
	if services.Config == nil {
		return errors.New("config store not configured")
	}

	cfg, err := services.Config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cmd.Println("TypeTide Setup Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select AI Provider")
	providers := []domain.AIProvider{domain.AIProviderOpenAI, domain.AIProviderAnthropic}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaultModels[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required")
	}

	cfg.Inference.Provider = provider
	cfg.Inference.Model = model
	cfg.Inference.APIKey = apiKey

	// Validate the configuration by pinging the provider
	cmd.Print("Validating configuration... ")
	if err := inference.ValidateConfig(&cfg.Inference); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("inference configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	if err := services.Config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	cmd.Printf("Inference provider configured: %s (%s)\n", provider, model)
	cmd.Printf("Saved to %s\n", services.Config.Path())
	return nil
}

// defaultModels maps each provider to its default model identifier.
var defaultModels = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "gpt-4o-mini",
	domain.AIProviderAnthropic: "claude-3-5-haiku-latest",
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
