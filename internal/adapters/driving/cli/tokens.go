package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

var (
	tokensLimit int
	tokensJSON  bool
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List notation that no rule recognised",
	Long: `Lists control words that passed through conversions unrecognised, most
frequent first. Each entry shows a sample input it appeared in.`,
	RunE: runTokensList,
}

var tokensClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all recorded tokens",
	RunE:  runTokensClear,
}

func init() {
	tokensCmd.Flags().IntVarP(&tokensLimit, "limit", "n", 20, "maximum number of tokens (0 = all)")
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "output tokens as JSON")
	tokensCmd.AddCommand(tokensClearCmd)
	rootCmd.AddCommand(tokensCmd)
}

func runTokensList(cmd *cobra.Command, _ []string) error {
	if tokenService == nil {
		return errors.New("token log not configured")
	}

	records, err := tokenService.List(cmd.Context(), tokensLimit)
	if err != nil {
		return fmt.Errorf("listing tokens: %w", err)
	}

	if tokensJSON {
		if records == nil {
			records = []domain.TokenRecord{}
		}
		return outputJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No unrecognized tokens recorded.")
		return nil
	}

	for _, r := range records {
		cmd.Printf("  %-20s %5d  [%s] %s\n", r.Token, r.Count, r.Context, r.Sample)
	}
	return nil
}

func runTokensClear(cmd *cobra.Command, _ []string) error {
	if tokenService == nil {
		return errors.New("token log not configured")
	}
	if err := tokenService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clearing tokens: %w", err)
	}
	cmd.Println("Token log cleared.")
	return nil
}
