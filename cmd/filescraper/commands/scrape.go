package commands

import (
	"github.com/spf13/cobra"

	"github.com/gobeaver/filescraper"
)

// ScrapeCmd scrapes one or more files given on the command line
var ScrapeCmd = &cobra.Command{
	Use:   "scrape <file>...",
	Short: "Scrape files",
	Long: `Identify files, extract their metadata and check whether they are well-formed.

The mimetype is detected from the content unless --mimetype is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		mimetype, _ := cmd.Flags().GetString("mimetype")
		strict, _ := cmd.Flags().GetBool("strict")
		opts := scrapeOptions(cmd)

		out := newResultWriter(cmd.OutOrStdout(), format, len(args) > 1)
		var firstErr error
		for _, path := range args {
			res, err := svc.Scrape(cmd.Context(), path, mimetype, opts...)
			if err != nil {
				return err
			}
			if err := out.Write(res); err != nil {
				return err
			}
			if strict && firstErr == nil {
				firstErr = filescraper.Check(res)
			}
		}
		if err := out.Flush(); err != nil {
			return err
		}
		return firstErr
	},
}

func init() {
	ScrapeCmd.Flags().StringP("mimetype", "m", "", "Predicted mimetype (detected when empty)")
	ScrapeCmd.Flags().Bool("strict", false, "Exit with an error when a file could not be analyzed")
	addScrapeFlags(ScrapeCmd)
}
