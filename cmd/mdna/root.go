package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mdna_extract/pkg/config"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mdna",
	Short: "Extract MD&A sections from SEC 10-K and 10-Q filings",
	Long: `mdna extracts the Management's Discussion and Analysis section from
SEC annual and quarterly reports, preserving financial tables in the
output with explicit table fences.

Extraction keeps two representations of each document: a tag-stripped
view for locating the section and a preservation view for the output
text, reconciled through line numbers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
}

var outputDir string

// effectiveConfig applies command-line overrides onto the loaded config.
func effectiveConfig() *config.Config {
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg
}
