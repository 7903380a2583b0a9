// Package cli provides the command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
	"github.com/typetide/typetide/internal/core/ports/driving"
	"github.com/typetide/typetide/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services holds the wired application services the commands run against.
type Services struct {
	Resolver driving.ResolverService
	Phrases  driving.PhraseService
	Input    driving.InputHandler
	Cache    driven.CacheStore
	Config   driven.ConfigStore
	Catalog  *domain.Catalog
}

// services is the active service set, injected by main before Execute.
var services Services

// SetServices injects the wired services for the commands to use.
func SetServices(s Services) {
	services = s
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "typetide",
	Short: "AI-styled typography for live text",
	Long: `Typetide styles the words you type: each word resolves to a font
family, weight, style and colour that evokes its meaning, through a
tiered pipeline of curated styles, cached resolutions and AI inference.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
