package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

var (
	convertLevel  string
	convertDomain string
	convertJSON   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [text]",
	Short: "Convert notation to spoken text",
	Long: `Converts one piece of notation into natural-language text.

The notation is read from the argument, or from stdin when no argument is
given. The domain is classified automatically unless --domain is set.

Audience levels:
  basic        - most explicit phrasing
  intermediate - conventional classroom phrasing
  advanced     - tersest phrasing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertLevel, "level", "l", "basic", "audience level")
	convertCmd.Flags().StringVarP(&convertDomain, "domain", "d", "", "domain hint (see 'speakmath rules')")
	convertCmd.Flags().BoolVar(&convertJSON, "json", false, "output the full result as JSON")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if conversionService == nil {
		return errors.New("conversion service not configured")
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	opts, err := convertOptions(convertLevel, convertDomain)
	if err != nil {
		return err
	}

	result, err := conversionService.Convert(cmd.Context(), text, opts)
	if err != nil {
		return fmt.Errorf("convert failed: %w", err)
	}

	if convertJSON {
		return outputJSON(cmd, result)
	}

	cmd.Println(result.Output)
	printStatusLine(cmd, result)
	return nil
}

// readInput returns the single argument, or all of stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no input: pass notation as an argument or on stdin")
	}
	return text, nil
}

func convertOptions(level, hint string) (domain.ConvertOptions, error) {
	l, err := domain.ParseAudienceLevel(level)
	if err != nil {
		return domain.ConvertOptions{}, err
	}
	return domain.ConvertOptions{Level: l, DomainHint: hint}, nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printStatusLine writes a one-line summary to stderr when it is a terminal.
func printStatusLine(cmd *cobra.Command, result *domain.ProcessingResult) {
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return
	}
	fmt.Fprintln(f, statusLine(result))
}

func statusLine(result *domain.ProcessingResult) string {
	cache := "miss"
	if result.CacheHit {
		cache = "hit"
	}
	line := fmt.Sprintf("[%s] %s %.2fms cache=%s passes=%d",
		result.Status, result.Context.Label,
		float64(result.Elapsed.Microseconds())/1000, cache, result.Passes)
	if len(result.Unrecognized) > 0 {
		line += " unrecognized=" + strings.Join(result.Unrecognized, ",")
	}
	return line
}
