package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gobeaver/filescraper/batch"
	"github.com/gobeaver/filescraper/logger"
)

// WatchCmd scrapes files as they appear or change below a directory
var WatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Scrape files as they appear or change below a directory",
	Long: `Watch a directory tree and scrape each selected file once it has stopped
changing for --settle. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		if format == FormatTable {
			// Rows cannot be buffered until the end of an endless run.
			format = FormatJSON
		}
		selector, err := selectorFromFlags(cmd)
		if err != nil {
			return err
		}
		settle, _ := cmd.Flags().GetDuration("settle")

		w, err := batch.NewWatcher(args[0], selector, settle)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scrape := scrapeFunc(cmd)
		out := newResultWriter(cmd.OutOrStdout(), format, true)
		log := logger.ComponentLogger("cli.watch")

		fmt.Fprintln(cmd.ErrOrStderr(), pterm.Info.Sprintf("Watching %s", args[0]))
		err = w.Run(ctx, func(e batch.Entry) {
			res, err := scrape(ctx, e.Path)
			if err != nil {
				log.Warnw("skipping file", logger.FieldFile, e.Path, logger.FieldError, err)
				return
			}
			if err := out.Write(res); err != nil {
				log.Errorw("cannot write result", logger.FieldFile, e.Path, logger.FieldError, err)
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	WatchCmd.Flags().Duration("settle", batch.DefaultSettle, "How long a file must be unchanged before it is scraped")
	addScrapeFlags(WatchCmd)
	addSelectorFlags(WatchCmd)
}
