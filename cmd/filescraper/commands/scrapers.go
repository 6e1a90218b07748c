package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type scraperInfo struct {
	Name           string              `json:"name" yaml:"name"`
	Supported      map[string][]string `json:"supported" yaml:"supported"`
	OnlyWellformed bool                `json:"only_wellformed" yaml:"only_wellformed"`
	AllowVersions  bool                `json:"allow_versions" yaml:"allow_versions"`
	RequiredParams []string            `json:"required_params,omitempty" yaml:"required_params,omitempty"`
	Owns           []string            `json:"owns,omitempty" yaml:"owns,omitempty"`
}

// ScrapersCmd lists the registered scrapers in priority order
var ScrapersCmd = &cobra.Command{
	Use:   "scrapers",
	Short: "List the registered scrapers",
	Long:  `List the registered scrapers in priority order with the mimetypes and versions they accept.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		descriptors := svc.Registry().Descriptors()
		infos := make([]scraperInfo, 0, len(descriptors))
		for _, d := range descriptors {
			infos = append(infos, scraperInfo{
				Name:           d.Name,
				Supported:      d.Supported,
				OnlyWellformed: d.OnlyWellformed,
				AllowVersions:  d.AllowVersions,
				RequiredParams: d.RequiredParams,
				Owns:           d.Owns,
			})
		}

		w := cmd.OutOrStdout()
		switch format {
		case FormatYAML:
			enc := yaml.NewEncoder(w)
			if err := enc.Encode(infos); err != nil {
				return err
			}
			return enc.Close()
		case FormatTable:
			data := pterm.TableData{{"Scraper", "Mimetypes", "Only well-formed", "Params"}}
			for _, info := range infos {
				data = append(data, []string{
					info.Name,
					formatSupported(info.Supported),
					fmt.Sprint(info.OnlyWellformed),
					strings.Join(info.RequiredParams, ", "),
				})
			}
			return renderTable(w, data, true)
		default:
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}
	},
}

func formatSupported(supported map[string][]string) string {
	mimetypes := make([]string, 0, len(supported))
	for m := range supported {
		mimetypes = append(mimetypes, m)
	}
	sort.Strings(mimetypes)

	lines := make([]string, len(mimetypes))
	for i, m := range mimetypes {
		if versions := supported[m]; len(versions) > 0 {
			lines[i] = m + " (" + strings.Join(versions, ", ") + ")"
		} else {
			lines[i] = m
		}
	}
	return strings.Join(lines, "\n")
}

func init() {
	ScrapersCmd.Flags().StringP("format", "f", FormatTable, "Output format: json, yaml, table")
}
