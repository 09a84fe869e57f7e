package main

import (
	"fmt"
	"os"

	"kokocares/keywords/pkg/cli"
	"kokocares/keywords/pkg/rules"

	"github.com/spf13/cobra"
)

var lintFlags struct {
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint FILE...",
	Short: "Validate rule payload files",
	Long: `Validate rule payload files before they are published.

The lint command reports every problem in a payload:
  - JSON syntax and the regexes object
  - preprocess and keyword patterns that do not compile
  - empty patterns, which match every input
  - uppercase literals, which never match lowercased input
  - empty category, severity or confidence tags

Examples:
  # Lint one payload
  keywords lint rules.json

  # Strict mode (warnings as errors)
  keywords lint --strict rules.json

  # JSON output for CI
  keywords lint --format json rules/*.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: lintPayloads,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the lint outcome for one file.
type LintResult struct {
	File   string            `json:"file"`
	Valid  bool              `json:"valid"`
	Issues []rules.LintIssue `json:"issues,omitempty"`
}

func lintPayloads(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	results := make([]LintResult, 0, len(args))
	failed := 0
	for _, file := range args {
		result := lintFile(file)
		if !result.Valid || (lintFlags.strict && len(result.Issues) > 0) {
			failed++
		}
		results = append(results, result)
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(out, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if len(r.Issues) == 0 {
				fmt.Fprintf(out, "✓ %s\n", r.File)
				continue
			}
			mark := "✓"
			if !r.Valid {
				mark = "✗"
			}
			fmt.Fprintf(out, "%s %s\n", mark, r.File)
			for _, issue := range r.Issues {
				fmt.Fprintf(out, "  %s\n", issue)
			}
		}
	}

	if failed > 0 {
		return &cli.ExitError{Status: 1, Err: fmt.Errorf("%d of %d files failed validation", failed, len(results))}
	}
	return nil
}

func lintFile(path string) LintResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return LintResult{
			File:   path,
			Issues: []rules.LintIssue{{Level: rules.LintError, Index: -1, Field: "file", Message: err.Error()}},
		}
	}

	issues := rules.Lint(data)
	return LintResult{
		File:   path,
		Valid:  !rules.HasErrors(issues),
		Issues: issues,
	}
}
