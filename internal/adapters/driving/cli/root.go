// Package cli provides the cobra command tree for speakmath.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
	"github.com/custodia-labs/speakmath/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services used by the commands. Set via SetServices before Execute.
var (
	conversionService driving.ConversionService
	batchService      driving.BatchService
	tokenService      driving.TokenService
	settingsService   driving.SettingsService
)

// Services aggregates the driving ports the commands depend on.
type Services struct {
	Conversion driving.ConversionService
	Batch      driving.BatchService
	Tokens     driving.TokenService
	Settings   driving.SettingsService
}

var rootCmd = &cobra.Command{
	Use:   "speakmath",
	Short: "Turn mathematical notation into speakable text",
	Long: `speakmath rewrites LaTeX-style mathematical notation into natural-language
text suitable for a speech synthesiser.

  speakmath convert '\frac{a}{b}'
  echo 'x^2' | speakmath convert --level advanced`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	conversionService = s.Conversion
	batchService = s.Batch
	tokenService = s.Tokens
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command with the given context. Command output goes
// to stdout so conversions can be piped.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}
