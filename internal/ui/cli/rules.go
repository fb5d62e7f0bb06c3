package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"modelscan/internal/engine/rules"
)

var (
	flagRulesShowFile  string
	flagRulesCheckFile string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate rule files",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective rule set",
	Args:  cobra.NoArgs,
	RunE:  runRulesShow,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a rule file without scanning",
	Args:  cobra.NoArgs,
	RunE:  runRulesCheck,
}

func init() {
	rulesShowCmd.Flags().StringVar(&flagRulesShowFile, "rules", "", "Rule file to show (default: the configured or embedded rules)")
	rulesCheckCmd.Flags().StringVar(&flagRulesCheckFile, "rules", "", "Rule file to validate")
	_ = rulesCheckCmd.MarkFlagRequired("rules")
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := loadConfig(false)
	if err != nil {
		return err
	}
	defer cleanup()

	if cmd.Flags().Changed("rules") {
		cfg.Rules.Path = flagRulesShowFile
	}

	rs, err := loadRules(cfg)
	if err != nil {
		return err
	}

	source := "embedded defaults"
	if strings.TrimSpace(cfg.Rules.Path) != "" {
		source = cfg.Rules.Path
	}
	fmt.Printf("Rule set (%s)\n", source)

	doc := rs.Doc()
	printRuleSection("Exact matches", doc.ExactMatches)
	printRuleSection("Partial patterns", doc.PartialPatterns)
	printRuleSection("Model name parts", doc.ModelNameParts)
	printRuleSection("API function patterns", doc.APICallPatterns.FunctionNames)
	printRuleSection("API parameter names", doc.APICallPatterns.ParameterNames)
	return nil
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	// Validation is config-independent; a broken modelscan.toml should not
	// block checking a rule file.
	if _, err := configureLogging(flagLogLevel, false); err != nil {
		return err
	}

	rs, err := rules.Load(flagRulesCheckFile, rules.Options{})
	if err != nil {
		return err
	}

	doc := rs.Doc()
	fmt.Printf("%s is valid: %d exact, %d partial, %d parts, %d function patterns, %d parameter names\n",
		flagRulesCheckFile,
		len(doc.ExactMatches),
		len(doc.PartialPatterns),
		len(doc.ModelNameParts),
		len(doc.APICallPatterns.FunctionNames),
		len(doc.APICallPatterns.ParameterNames),
	)
	if rs.Empty() {
		fmt.Println("warning: rule set matches nothing (no exact, partial, or part entries)")
	}
	return nil
}

func printRuleSection(title string, values []string) {
	fmt.Printf("\n%s (%d):\n", title, len(values))
	if len(values) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, v := range values {
		fmt.Printf("  - %s\n", v)
	}
}
