package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var rulesJSON bool

var rulesCmd = &cobra.Command{
	Use:   "rules [layer]",
	Short: "List rewrite rules",
	Long: `Lists rewrite rules in priority order. With no layer every layer is
listed; domain layers are tried before the common layer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List accepted domain hints",
	RunE:  runDomains,
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesJSON, "json", false, "output rules as JSON")
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(domainsCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	if conversionService == nil {
		return errors.New("conversion service not configured")
	}

	layer := ""
	if len(args) == 1 {
		layer = args[0]
	}

	infos, err := conversionService.Rules(layer)
	if err != nil {
		return fmt.Errorf("listing rules: %w", err)
	}

	if rulesJSON {
		return outputJSON(cmd, infos)
	}

	current := ""
	for _, r := range infos {
		if r.Layer != current {
			current = r.Layer
			cmd.Printf("%s:\n", current)
		}
		cmd.Printf("  [%d] %s (%s", r.Priority, r.Name, r.Match)
		if r.Trigger != "" {
			cmd.Printf(" %s", r.Trigger)
		}
		cmd.Println(")")
	}
	return nil
}

func runDomains(cmd *cobra.Command, _ []string) error {
	if conversionService == nil {
		return errors.New("conversion service not configured")
	}
	for _, d := range conversionService.Domains() {
		cmd.Println(d)
	}
	return nil
}
