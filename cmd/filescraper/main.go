package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gobeaver/filescraper/cmd/filescraper/commands"
	"github.com/gobeaver/filescraper/logger"
)

var rootCmd = &cobra.Command{
	Use:   "filescraper",
	Short: "Identify files, extract technical metadata and check well-formedness",
	Long: `filescraper runs format-specific scrapers (mediainfo, ffmpeg, pngcheck,
dpxv, xmllint, schematron) against files and merges what they report.

Available commands:
  scrape   - Scrape one file
  batch    - Scrape every selected file below a directory
  watch    - Scrape files as they appear or change below a directory
  scrapers - List the registered scrapers
  version  - Show version information

Examples:
  filescraper scrape movie.mpg --mimetype video/mpeg
  filescraper scrape mets.xml --schematron rules/mets.sch --format yaml
  filescraper batch ./ingest --glob '*.{mp4,mkv}' --workers 8 --format table
  filescraper watch ./incoming --glob '*.png'`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return commands.Setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON (overrides BEAVER_FILESCRAPER_LOG_JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides BEAVER_FILESCRAPER_LOG_LEVEL)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v for debug)")

	rootCmd.AddCommand(commands.ScrapeCmd)
	rootCmd.AddCommand(commands.BatchCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.ScrapersCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
