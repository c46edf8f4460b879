package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mdna_extract/pkg/core/extract"
	"mdna_extract/pkg/core/report"
	"mdna_extract/pkg/core/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch <input-dir>",
	Short: "Extract MD&A sections from every filing in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var filter extract.Filter
		if c.FilterFile != "" {
			f, err := extract.LoadFilter(c.FilterFile)
			if err != nil {
				return err
			}
			filter = f
		}

		pool, err := store.Connect(ctx, c.DatabaseURL)
		if err != nil {
			return err
		}
		if pool != nil {
			defer pool.Close()
		}
		index, err := store.NewIndex(pool, c.OutputDir)
		if err != nil {
			return err
		}
		defer index.Close()

		var resolver extract.Resolver
		if referenceDir != "" {
			resolver = extract.NewDirectoryResolver(referenceDir)
		}

		extractor := extract.New(c, resolver, logger)
		batch := extract.NewBatch(extractor, filter, index, c.Workers, logger)

		stats, err := batch.Run(ctx, args[0])
		if stats != nil {
			fmt.Printf("Processed %d documents: %d succeeded, %d failed, %d filtered (%s)\n",
				stats.Total, stats.Succeeded, stats.Failed, stats.Filtered,
				stats.Elapsed.Round(time.Millisecond))
			if rerr := report.Save(stats, c.OutputDir, c.ReportHTML); rerr != nil {
				logger.Warn().Err(rerr).Msg("failed to save run report")
			}
		}
		return err
	},
}

func init() {
	batchCmd.Flags().StringVar(&referenceDir, "references", "",
		"directory of companion documents for incorporation by reference")
}
