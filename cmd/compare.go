package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"codeparity/internal/adapter/outbound/treesitter"
	"codeparity/internal/application/service"
	"codeparity/internal/domain/valueobject"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	compareLanguage string
	compareOutput   string
	compareExpected string
	compareActual   string
)

// newCompareCmd creates and returns the compare command.
func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [EXPECTED_FILE ACTUAL_FILE]",
		Short: "Compare two sources for structural equivalence",
		Long: `Compare two sources for structural equivalence.

Both sources are parsed with the grammar for the given language and their
syntax trees compared node by node. Formatting and whitespace differences
are ignored; structural differences are reported with their tree paths.

Sources come from the two file arguments, or inline from --expected and
--actual. The language is taken from --language, or detected from the
expected file's extension when files are given. For languages without a
grammar the sources are compared as whitespace-normalized strings.

Exit status is 0 when the sources are equivalent and 1 when they differ.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompare,
	}

	cmd.Flags().StringVarP(&compareLanguage, "language", "l", "",
		"language identifier (detected from the expected file's extension when omitted)")
	cmd.Flags().StringVarP(&compareOutput, "output", "o", "text",
		"output format (text, json, yaml)")
	cmd.Flags().StringVar(&compareExpected, "expected", "",
		"expected source text, instead of a file argument")
	cmd.Flags().StringVar(&compareActual, "actual", "",
		"actual source text, instead of a file argument")

	return cmd
}

// runCompare executes one comparison and renders the result.
func runCompare(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	expectedText, actualText, languageID, err := resolveCompareInputs(cmd, args)
	if err != nil {
		return err
	}

	svc, err := service.NewComparisonService(treesitter.NewTreeSitterSyntaxParser())
	if err != nil {
		return fmt.Errorf("failed to create comparison service: %w", err)
	}

	result, err := svc.Compare(cmd.Context(), expectedText, actualText, languageID)
	if err != nil {
		return err
	}

	if renderErr := renderResult(cmd, result); renderErr != nil {
		return renderErr
	}

	if !result.Equal {
		os.Exit(1)
	}
	return nil
}

// resolveCompareInputs determines the two source texts and the language
// identifier from file arguments or inline flags.
func resolveCompareInputs(cmd *cobra.Command, args []string) (string, string, string, error) {
	inline := cmd.Flags().Changed("expected") || cmd.Flags().Changed("actual")

	if inline {
		if len(args) != 0 {
			return "", "", "", fmt.Errorf("cannot mix file arguments with --expected/--actual")
		}
		if compareLanguage == "" {
			return "", "", "", fmt.Errorf("--language is required with inline sources")
		}
		return compareExpected, compareActual, compareLanguage, nil
	}

	if len(args) != 2 {
		return "", "", "", fmt.Errorf("expected two file arguments, or --expected/--actual")
	}
	expectedPath, actualPath := args[0], args[1]

	languageID := compareLanguage
	if languageID == "" {
		detected, err := valueobject.DetectLanguageFromPath(expectedPath)
		if err != nil {
			return "", "", "", fmt.Errorf("cannot detect language (use --language): %w", err)
		}
		languageID = detected.Name()
	}

	expectedText, err := os.ReadFile(expectedPath)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read %s: %w", expectedPath, err)
	}
	actualText, err := os.ReadFile(actualPath)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read %s: %w", actualPath, err)
	}

	return string(expectedText), string(actualText), languageID, nil
}

// renderResult writes the result in the selected output format.
func renderResult(cmd *cobra.Command, result valueobject.ComparisonResult) error {
	out := cmd.OutOrStdout()

	switch compareOutput {
	case "json":
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(out, string(encoded))
	case "yaml":
		encoded, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprint(out, string(encoded))
	case "text":
		renderTextResult(cmd, result)
	default:
		return fmt.Errorf("unknown output format: %s", compareOutput)
	}

	return nil
}

// renderTextResult writes a human-readable summary.
func renderTextResult(cmd *cobra.Command, result valueobject.ComparisonResult) {
	out := cmd.OutOrStdout()

	if result.Equal {
		fmt.Fprintf(out, "Equivalent (%s)\n", result.Language)
		return
	}

	fmt.Fprintf(out, "Not equivalent (%s), %d difference(s):\n", result.Language, len(result.Differences))
	for _, diff := range result.Differences {
		fmt.Fprintf(out, "  - %s\n", diff)
	}
}
