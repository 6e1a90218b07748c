package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gobeaver/filescraper/batch"
	"github.com/gobeaver/filescraper/logger"
	"github.com/gobeaver/filescraper/merge"
)

// BatchCmd scrapes every selected file below a directory
var BatchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Scrape every selected file below a directory",
	Long: `Walk a directory, select files with --glob, --depth and --hidden, and scrape
them in parallel. Mimetypes are detected from the file content.

Results are printed as they complete: one JSON document per line, YAML
documents separated by '---', or a summary table at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		selector, err := selectorFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		entries, err := batch.Walk(ctx, args[0], selector)
		if err != nil {
			return err
		}

		runner := batch.NewRunner(scrapeFunc(cmd), runnerOptions(cmd)...)
		out := newResultWriter(cmd.OutOrStdout(), format, true)
		log := logger.ComponentLogger("cli.batch")

		start := time.Now()
		var failed int
		err = runner.RunEntries(ctx, entries, func(item batch.Item) error {
			if item.Err != nil {
				failed++
				log.Warnw("skipping file", logger.FieldFile, item.Path, logger.FieldError, item.Err)
				return nil
			}
			return out.Write(item.Result)
		})
		if err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}

		if format == FormatTable {
			fmt.Fprintln(cmd.ErrOrStderr(), pterm.Info.Sprintf("Scraped %d files in %s (%d failed)",
				len(entries)-failed, time.Since(start).Round(time.Millisecond), failed))
		}
		return nil
	},
}

func init() {
	addScrapeFlags(BatchCmd)
	addSelectorFlags(BatchCmd)
	addRunnerFlags(BatchCmd)
}

func addRunnerFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, "Files scraped at once (default BEAVER_FILESCRAPER_BATCH_WORKERS)")
	cmd.Flags().Int("rate", 0, "Maximum files started per second (default BEAVER_FILESCRAPER_BATCH_RATE_PER_SECOND)")
}

func runnerOptions(cmd *cobra.Command) []batch.RunnerOption {
	workers := cfg.BatchWorkers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	rate := cfg.BatchRatePerSecond
	if cmd.Flags().Changed("rate") {
		rate, _ = cmd.Flags().GetInt("rate")
	}
	return []batch.RunnerOption{batch.WithWorkers(workers), batch.WithRate(rate)}
}

func scrapeFunc(cmd *cobra.Command) batch.ScrapeFunc {
	opts := scrapeOptions(cmd)
	return func(ctx context.Context, path string) (*merge.FileResult, error) {
		return svc.Scrape(ctx, path, "", opts...)
	}
}
