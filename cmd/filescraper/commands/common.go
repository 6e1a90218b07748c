// Package commands implements the filescraper CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gobeaver/filescraper"
	"github.com/gobeaver/filescraper/batch"
	"github.com/gobeaver/filescraper/logger"
	"github.com/gobeaver/filescraper/merge"
)

// Output formats
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

var (
	cfg *filescraper.Config
	svc *filescraper.Service
)

// Setup loads the configuration, initializes logging and creates the
// service shared by all commands.
func Setup(cmd *cobra.Command) error {
	var err error
	cfg, err = filescraper.GetConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	jsonLogs := cfg.LogJSON
	if f := cmd.Flags().Lookup("log-json"); f != nil && f.Changed {
		jsonLogs, _ = cmd.Flags().GetBool("log-json")
	}
	level := cfg.LogLevel
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		level = l
	}
	if v, _ := cmd.Flags().GetCount("verbose"); v > 0 {
		level = "debug"
	}
	if err := logger.Initialize(jsonLogs, level); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	svc, err = filescraper.New(cfg)
	if err != nil {
		return err
	}
	return nil
}

// addScrapeFlags registers the per-file scrape options.
func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().String("version", "", "Predicted format version")
	cmd.Flags().Bool("no-validation", false, "Only scrape metadata; skip well-formedness checks")
	cmd.Flags().String("schematron", "", "Schematron rule file for XML validation")
	cmd.Flags().Bool("verbose-report", false, "Keep duplicate entries in schematron reports")
	cmd.Flags().Bool("no-cache", false, "Recompile schematron rules instead of reusing cached validators")
	cmd.Flags().String("extra-hash", "", "Extra discriminator for the compiled validator cache")
	cmd.Flags().StringSlice("checksum", nil, "Record file checksums (md5, sha1, sha256, sha512, crc32, xxhash)")
	cmd.Flags().StringP("format", "f", FormatJSON, "Output format: json, yaml, table")
}

// scrapeOptions converts flags into scrape options.
func scrapeOptions(cmd *cobra.Command) []filescraper.Option {
	var opts []filescraper.Option
	flags := cmd.Flags()

	if v, _ := flags.GetString("version"); v != "" {
		opts = append(opts, filescraper.WithVersion(v))
	}
	if off, _ := flags.GetBool("no-validation"); off {
		opts = append(opts, filescraper.WithFullValidation(false))
	}
	if s, _ := flags.GetString("schematron"); s != "" {
		opts = append(opts, filescraper.WithSchematron(s))
	}
	if flags.Changed("verbose-report") {
		v, _ := flags.GetBool("verbose-report")
		opts = append(opts, filescraper.WithVerbose(v))
	}
	if off, _ := flags.GetBool("no-cache"); off {
		opts = append(opts, filescraper.WithCache(false))
	}
	if h, _ := flags.GetString("extra-hash"); h != "" {
		opts = append(opts, filescraper.WithExtraHash(h))
	}
	if sums, _ := flags.GetStringSlice("checksum"); len(sums) > 0 {
		algos := make([]filescraper.ChecksumAlgorithm, len(sums))
		for i, s := range sums {
			algos[i] = filescraper.ChecksumAlgorithm(strings.ToLower(s))
		}
		opts = append(opts, filescraper.WithChecksums(algos...))
	}
	return opts
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case FormatJSON, FormatYAML, FormatTable:
		return format, nil
	default:
		return "", errors.Newf("unknown output format %q", format)
	}
}

// addSelectorFlags registers the directory selection flags.
func addSelectorFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("glob", nil, "Only scrape files matching a glob (repeatable)")
	cmd.Flags().Int("depth", 0, "Maximum directory depth (0 for unlimited)")
	cmd.Flags().Bool("hidden", false, "Include dot files and dot directories")
}

func selectorFromFlags(cmd *cobra.Command) (batch.Selector, error) {
	var parts []batch.Selector

	if hidden, _ := cmd.Flags().GetBool("hidden"); !hidden {
		parts = append(parts, batch.SkipHidden())
	}
	if depth, _ := cmd.Flags().GetInt("depth"); depth > 0 {
		parts = append(parts, batch.Depth(depth))
	}
	if patterns, _ := cmd.Flags().GetStringSlice("glob"); len(patterns) > 0 {
		globs := make([]batch.Selector, 0, len(patterns))
		for _, p := range patterns {
			g, err := batch.Glob(p)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid glob %q", p)
			}
			globs = append(globs, g)
		}
		parts = append(parts, batch.Or(globs...))
	}

	if len(parts) == 0 {
		return batch.All(), nil
	}
	return batch.And(parts...), nil
}

// resultWriter prints results in the selected format. JSON results are
// written one per line when more than one file is printed.
type resultWriter struct {
	w       io.Writer
	format  string
	stream  bool
	written int
	rows    pterm.TableData
}

func newResultWriter(w io.Writer, format string, stream bool) *resultWriter {
	return &resultWriter{w: w, format: format, stream: stream}
}

func (rw *resultWriter) Write(res *merge.FileResult) error {
	defer func() { rw.written++ }()

	switch rw.format {
	case FormatYAML:
		if rw.written > 0 {
			if _, err := io.WriteString(rw.w, "---\n"); err != nil {
				return err
			}
		}
		enc := yaml.NewEncoder(rw.w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()

	case FormatTable:
		if rw.stream {
			rw.rows = append(rw.rows, summaryRow(res))
			return nil
		}
		return renderDetail(rw.w, res)

	default:
		enc := json.NewEncoder(rw.w)
		if !rw.stream {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(res)
	}
}

// Flush renders buffered table rows.
func (rw *resultWriter) Flush() error {
	if rw.format != FormatTable || !rw.stream || len(rw.rows) == 0 {
		return nil
	}
	data := append(pterm.TableData{{"File", "Mimetype", "Version", "Well-formed", "Errors", "Warnings"}}, rw.rows...)
	rw.rows = nil
	return renderTable(rw.w, data, true)
}

func renderTable(w io.Writer, data pterm.TableData, header bool) error {
	table := pterm.DefaultTable.WithData(data)
	if header {
		table = table.WithHasHeader()
	}
	out, err := table.Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func summaryRow(res *merge.FileResult) []string {
	return []string{
		res.Filename,
		res.Mimetype,
		res.Version,
		res.WellFormed.String(),
		strconv.Itoa(len(res.Errors)),
		strconv.Itoa(len(res.Warnings)),
	}
}

func renderDetail(w io.Writer, res *merge.FileResult) error {
	head := pterm.TableData{
		{"File", res.Filename},
		{"Mimetype", res.Mimetype},
		{"Version", res.Version},
		{"Well-formed", res.WellFormed.String()},
	}
	for algo, sum := range res.Checksums {
		head = append(head, []string{algo, sum})
	}
	if err := renderTable(w, head, false); err != nil {
		return err
	}

	scrapers := pterm.TableData{{"Scraper", "State", "Well-formed", "Messages", "Errors"}}
	for _, s := range res.Scrapers {
		scrapers = append(scrapers, []string{
			s.Scraper,
			s.State.String(),
			s.WellFormed.String(),
			strings.Join(s.Messages, "\n"),
			strings.Join(s.Errors, "\n"),
		})
	}
	if err := renderTable(w, scrapers, true); err != nil {
		return err
	}

	for i, s := range res.Streams {
		rows := pterm.TableData{{"Stream " + strconv.Itoa(i), ""}}
		for pair := s.Render().Oldest(); pair != nil; pair = pair.Next() {
			rows = append(rows, []string{pair.Key, pair.Value})
		}
		if err := renderTable(w, rows, true); err != nil {
			return err
		}
	}

	for _, f := range res.Warnings {
		fmt.Fprintln(w, pterm.Warning.Sprintf("%s: %s", f.Scraper, f.Message))
	}
	for _, f := range res.Errors {
		fmt.Fprintln(w, pterm.Error.Sprintf("%s: %s", f.Scraper, f.Message))
	}
	return nil
}
