package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"kokocares/keywords/pkg/cli"
	"kokocares/keywords/pkg/keywords"
	"kokocares/keywords/pkg/rules"

	"github.com/spf13/cobra"
)

var rulesFlags struct {
	rulesVersion string
	out          string
	format       string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect rule sets",
	Long:  `Inspect the rule sets served by the rule service or a local payload file.`,
}

var rulesFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the current rule set and summarise it",
	Long: `Fetch the rule set from the configured source, compile it and print a
summary. With --out the raw payload is saved, ready for rules.rules_file.

Examples:
  # Summarise the latest rules
  keywords rules fetch

  # Save a pinned version for offline use
  keywords rules fetch --rules-version v3 --out rules.json`,
	RunE: fetchRules,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Summarise a local rule payload",
	Args:  cobra.ExactArgs(1),
	RunE:  showRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesFetchCmd, rulesShowCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesFlags.format, "format", "text", "output format: text, json")
	rulesFetchCmd.Flags().StringVar(&rulesFlags.rulesVersion, "rules-version", "", "rule set version (latest when empty)")
	rulesFetchCmd.Flags().StringVarP(&rulesFlags.out, "out", "o", "", "write the raw payload to this file")
}

// RuleSummary describes a compiled rule set.
type RuleSummary struct {
	Version    string         `json:"version,omitempty"`
	Patterns   int            `json:"patterns"`
	TTL        string         `json:"ttl,omitempty"`
	Categories map[string]int `json:"categories"`
	Severities map[string]int `json:"severities"`
}

// String renders the text format.
func (s RuleSummary) String() string {
	var b strings.Builder
	version := s.Version
	if version == "" {
		version = "(unversioned)"
	}
	fmt.Fprintf(&b, "version:  %s\n", version)
	fmt.Fprintf(&b, "patterns: %d\n", s.Patterns)
	if s.TTL != "" {
		fmt.Fprintf(&b, "ttl:      %s\n", s.TTL)
	}
	writeCounts(&b, "categories", s.Categories)
	writeCounts(&b, "severities", s.Severities)
	return strings.TrimRight(b.String(), "\n")
}

func writeCounts(b *strings.Builder, title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "  %-12s %d\n", k, counts[k])
	}
}

// Summarize counts a rule set's patterns by tag.
func Summarize(rs *rules.RuleSet) RuleSummary {
	s := RuleSummary{
		Version:    rs.Version(),
		Patterns:   rs.Len(),
		Categories: make(map[string]int),
		Severities: make(map[string]int),
	}
	for _, p := range rs.Patterns() {
		s.Categories[p.Category]++
		s.Severities[p.Severity]++
	}
	return s
}

func fetchRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(rulesFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	src := keywords.NewSource(&cfg.Rules, keywords.WithLogger(logger), keywords.WithUserAgent("keywords-cli/"+Version))

	ctx := commandContext(cmd)
	res, err := src.Fetch(ctx, rulesFlags.rulesVersion)
	if err != nil {
		return cli.NewCommandError("rules fetch", err)
	}

	rs, err := rules.Parse(res.Body)
	if err != nil {
		return cli.NewCommandError("rules fetch", err)
	}

	if rulesFlags.out != "" {
		if err := os.WriteFile(rulesFlags.out, res.Body, 0o644); err != nil {
			return cli.NewCommandError("rules fetch", err)
		}
		logger.Info("rule payload saved", "path", rulesFlags.out, "bytes", len(res.Body))
	}

	summary := Summarize(rs)
	summary.TTL = res.TTL.String()
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), summary)
}

func showRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(rulesFlags.format)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return cli.NewCommandError("rules show", err)
	}
	rs, err := rules.Parse(data)
	if err != nil {
		return cli.NewCommandError("rules show", err)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), Summarize(rs))
}
