package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// maxLineSize bounds a single batch input line.
const maxLineSize = 1 << 20

var (
	batchLevel  string
	batchDomain string
	batchJSON   bool
	batchStats  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Convert one input per line",
	Long: `Converts every non-blank line of a file (or stdin when the file is
omitted or "-") concurrently, printing results in input order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchLevel, "level", "l", "basic", "audience level")
	batchCmd.Flags().StringVarP(&batchDomain, "domain", "d", "", "domain hint for every line")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output results as JSON")
	batchCmd.Flags().BoolVar(&batchStats, "stats", false, "print cache statistics when done")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchService == nil {
		return errors.New("batch service not configured")
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	inputs, err := readLines(in)
	if err != nil {
		return err
	}

	opts, err := convertOptions(batchLevel, batchDomain)
	if err != nil {
		return err
	}

	results, err := batchService.ConvertAll(cmd.Context(), inputs, opts)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if batchJSON {
		if results == nil {
			results = []*domain.ProcessingResult{}
		}
		if err := outputJSON(cmd, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			cmd.Println(r.Output)
		}
	}

	if batchStats && conversionService != nil {
		s := conversionService.CacheStats()
		fmt.Fprintf(cmd.ErrOrStderr(), "cache: %d/%d entries, %d hits, %d misses, %d evicted\n",
			s.Size, s.Capacity, s.Hits, s.Misses, s.Evictions)
	}
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}
