package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/typetide/typetide/internal/core/domain"
)

var phrasesJSON bool

var phrasesCmd = &cobra.Command{
	Use:   "phrases [words...]",
	Short: "Detect multi-word phrases",
	Long: `Runs phrase detection over the given words and prints the spans
that should be styled as a unit (proper nouns, idioms, titles).`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPhrases,
}

func init() {
	phrasesCmd.Flags().BoolVar(&phrasesJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(phrasesCmd)
}

func runPhrases(cmd *cobra.Command, args []string) error {
	if services.Phrases == nil {
		return errors.New("phrase service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	words := make([]string, 0, len(args))
	for _, arg := range args {
		word := domain.NormaliseWord(arg)
		if word != "" {
			words = append(words, word)
		}
	}

	detected, err := services.Phrases.DetectPhrases(ctx, words)
	if err != nil {
		return fmt.Errorf("detect phrases: %w", err)
	}

	if phrasesJSON {
		data, err := json.MarshalIndent(detected, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(detected) == 0 {
		cmd.Println("No phrases detected.")
		return nil
	}
	for _, p := range detected {
		cmd.Printf("  [%d-%d] %s", p.StartIndex, p.EndIndex, strings.Join(p.Words, " "))
		if p.Reason != "" {
			cmd.Printf(" (%s)", p.Reason)
		}
		cmd.Println()
	}
	return nil
}
