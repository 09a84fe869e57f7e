package main

import (
	"fmt"
	"io"
	"strings"

	"kokocares/keywords/pkg/cli"
	"kokocares/keywords/pkg/keywords"

	"github.com/spf13/cobra"
)

var matchFlags struct {
	filter       string
	rulesVersion string
	explain      bool
	format       string
}

var matchCmd = &cobra.Command{
	Use:   "match [text...]",
	Short: "Match text against the rule set",
	Long: `Match text against the sensitive-keyword rule set.

The arguments are joined with spaces. With no arguments the text is read from
standard input.

Exit status is 0 when a keyword matched, 1 when none did and 2 on any error.

Examples:
  # Match one text
  keywords match "i want to kms"

  # Only consider high severity suicide patterns
  keywords match --filter "category=suicide:severity=high" "some text"

  # Use a pinned rule set version and show the matching pattern
  keywords match --rules-version v3 --explain "some text"

  # JSON output
  echo "some text" | keywords match --format json`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&matchFlags.filter, "filter", "f", "", "filter expression, e.g. category=suicide,selfharm:severity=high")
	matchCmd.Flags().StringVar(&matchFlags.rulesVersion, "rules-version", "", "rule set version (latest when empty)")
	matchCmd.Flags().BoolVar(&matchFlags.explain, "explain", false, "print the matching pattern and its tags")
	matchCmd.Flags().StringVar(&matchFlags.format, "format", "text", "output format: text, json")
}

// MatchOutput is the result printed by the match command.
type MatchOutput struct {
	Matched     bool   `json:"matched"`
	Code        int    `json:"code"`
	Error       string `json:"error,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	Category    string `json:"category,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Confidence  string `json:"confidence,omitempty"`
	RuleVersion string `json:"rules_version,omitempty"`
}

// String renders the text format.
func (o MatchOutput) String() string {
	if o.Error != "" {
		return fmt.Sprintf("error (%d): %s", o.Code, o.Error)
	}
	if !o.Matched {
		return "not matched"
	}
	if o.Pattern == "" {
		return "matched"
	}
	return fmt.Sprintf("matched %q category=%s severity=%s confidence=%s", o.Pattern, o.Category, o.Severity, o.Confidence)
}

func runMatch(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(matchFlags.format)
	if err != nil {
		return err
	}

	text, err := matchText(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return writeMatch(cmd, format, errorOutput(err))
	}
	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	client, err := keywords.New(cfg, keywords.WithLogger(logger), keywords.WithUserAgent("keywords-cli/"+Version))
	if err != nil {
		return writeMatch(cmd, format, errorOutput(err))
	}

	ctx := commandContext(cmd)

	if !matchFlags.explain {
		matched, err := client.Match(ctx, text, matchFlags.filter, matchFlags.rulesVersion)
		if err != nil {
			return writeMatch(cmd, format, errorOutput(err))
		}
		return writeMatch(cmd, format, MatchOutput{Matched: matched, Code: int(keywords.Result(matched, nil))})
	}

	res, err := client.Explain(ctx, text, matchFlags.filter, matchFlags.rulesVersion)
	if err != nil {
		return writeMatch(cmd, format, errorOutput(err))
	}
	out := MatchOutput{Matched: res.Matched, Code: int(keywords.Result(res.Matched, nil))}
	if res.Pattern != nil {
		out.Pattern = res.Pattern.Regex.String()
		out.Category = res.Pattern.Category
		out.Severity = res.Pattern.Severity
		out.Confidence = res.Pattern.Confidence
	}
	if status := client.Status(); len(status) > 0 {
		out.RuleVersion = status[0].Version
	}
	return writeMatch(cmd, format, out)
}

func matchText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func errorOutput(err error) MatchOutput {
	code := keywords.CodeOf(err)
	return MatchOutput{Code: int(code), Error: code.Description()}
}

// writeMatch prints out and returns the ExitError carrying its exit status.
func writeMatch(cmd *cobra.Command, format cli.OutputFormat, out MatchOutput) error {
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	status := cli.ExitStatusFor(keywords.Code(out.Code))
	if status == cli.ExitMatched {
		return nil
	}
	return &cli.ExitError{Status: status}
}
