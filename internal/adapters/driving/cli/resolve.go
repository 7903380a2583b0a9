package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driving"
	"github.com/typetide/typetide/internal/logger"
)

var (
	resolveJSON     bool
	resolveAsPhrase bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [words...]",
	Short: "Resolve words to font variants",
	Long: `Resolves each word through the styling pipeline and prints the
chosen font family, weight, style and colour, together with the tier
that produced it (vetted, cache or llm).

With --phrase the words are styled as one unit instead of individually.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output results as JSON")
	resolveCmd.Flags().BoolVar(&resolveAsPhrase, "phrase", false, "style all words as one phrase")
	rootCmd.AddCommand(resolveCmd)
}

// resolvedLine is the JSON output shape of one resolution.
type resolvedLine struct {
	Text    string                  `json:"text"`
	Family  string                  `json:"family"`
	Weight  int                     `json:"weight"`
	Style   domain.FontStyle        `json:"style"`
	Colour  string                  `json:"colour"`
	Source  domain.ResolutionSource `json:"source"`
	Hue     float64                 `json:"hue"`
	Chroma  float64                 `json:"chroma"`
	Light   float64                 `json:"lightness"`
	Message string                  `json:"error,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	if services.Resolver == nil {
		return errors.New("resolver service not configured")
	}
	defer logger.Timing("resolve")()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var lines []resolvedLine
	if resolveAsPhrase {
		res, err := services.Resolver.ResolvePhrase(ctx, args)
		if err != nil {
			return fmt.Errorf("resolve phrase: %w", err)
		}
		lines = append(lines, toLine(strings.Join(args, " "), res))
	} else {
		for _, word := range args {
			res, err := services.Resolver.ResolveWord(ctx, word)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidInput) {
					continue
				}
				return fmt.Errorf("resolve %q: %w", word, err)
			}
			lines = append(lines, toLine(word, res))
		}
	}

	if resolveJSON {
		data, err := json.MarshalIndent(lines, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, line := range lines {
		cmd.Printf("  %-20s %s %d %s %s (%s)\n",
			line.Text, line.Family, line.Weight, line.Style, line.Colour, line.Source)
	}
	return nil
}

func toLine(text string, res driving.Resolution) resolvedLine {
	return resolvedLine{
		Text:   text,
		Family: res.Variant.Family,
		Weight: res.Variant.Weight,
		Style:  res.Variant.Style,
		Colour: res.Variant.Colour.Hex(),
		Source: res.Source,
		Hue:    res.Variant.Colour.Hue,
		Chroma: res.Variant.Colour.Chroma,
		Light:  res.Variant.Colour.Lightness,
	}
}
