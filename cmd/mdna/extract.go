package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mdna_extract/pkg/core/extract"
)

var referenceDir string

var extractCmd = &cobra.Command{
	Use:   "extract <filing.txt>",
	Short: "Extract the MD&A section from a single filing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()

		var resolver extract.Resolver
		if referenceDir != "" {
			resolver = extract.NewDirectoryResolver(referenceDir)
		}

		extractor := extract.New(c, resolver, logger)
		result, err := extractor.ExtractFile(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %s %s: %d words, %d tables\n",
			result.Filing.FormType, result.Filing.CIK, result.WordCount, len(result.Tables))
		if result.OutputPath != "" {
			fmt.Printf("Saved to %s\n", result.OutputPath)
		}
		for _, w := range result.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&referenceDir, "references", "",
		"directory of companion documents for incorporation by reference")
}
