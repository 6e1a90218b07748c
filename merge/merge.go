// Package merge folds the results of independently run scrapers into one
// per-file result.
//
// For every stream index and field, scrapers are visited in registry
// priority order. The first concrete value wins, except that a scraper
// owning the canonical field list of the stream type overrides non-owners
// by reporting NotApplicable. Fields nobody resolved stay Unresolved and are
// reported as incomplete metadata. Two different concrete values for the
// same field are kept as conflicts; they never change the verdict.
package merge

import (
	"fmt"

	"github.com/gobeaver/filescraper/logger"
	"github.com/gobeaver/filescraper/metadata"
	"github.com/gobeaver/filescraper/scraper"
)

// NoContributionMessage is recorded when every selected scraper failed.
const NoContributionMessage = "No scraper produced a result."

// Finding is an error or warning attributed to a scraper.
type Finding struct {
	Scraper string            `json:"scraper,omitempty" yaml:"scraper,omitempty"`
	Kind    scraper.ErrorKind `json:"kind" yaml:"kind"`
	Message string            `json:"message" yaml:"message"`
}

// Conflict records a concrete value that lost to a higher priority one.
type Conflict struct {
	Index    int    `json:"index" yaml:"index"`
	Field    string `json:"field" yaml:"field"`
	Kept     string `json:"kept" yaml:"kept"`
	KeptBy   string `json:"kept_by" yaml:"kept_by"`
	Rejected string `json:"rejected" yaml:"rejected"`
	Scraper  string `json:"scraper" yaml:"scraper"`
}

// Summary is the per-scraper outcome kept alongside the merged record.
type Summary struct {
	Scraper    string           `json:"scraper" yaml:"scraper"`
	State      scraper.State    `json:"state" yaml:"state"`
	WellFormed metadata.Verdict `json:"well_formed" yaml:"well_formed"`
	Messages   []string         `json:"messages,omitempty" yaml:"messages,omitempty"`
	Errors     []string         `json:"errors,omitempty" yaml:"errors,omitempty"`
	DurationMS int64            `json:"duration_ms" yaml:"duration_ms"`
}

// FileResult is the merged outcome for one file.
type FileResult struct {
	Filename   string             `json:"filename" yaml:"filename"`
	Mimetype   string             `json:"mimetype" yaml:"mimetype"`
	Version    string             `json:"version" yaml:"version"`
	WellFormed metadata.Verdict   `json:"well_formed" yaml:"well_formed"`
	Streams    []*metadata.Stream `json:"streams" yaml:"streams"`
	Scrapers   []Summary          `json:"scrapers" yaml:"scrapers"`
	Errors     []Finding          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings   []Finding          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Conflicts  []Conflict         `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	// Checksums maps algorithm names to hex digests when requested.
	Checksums  map[string]string  `json:"checksums,omitempty" yaml:"checksums,omitempty"`
}

// Merge combines results given in registry priority order.
func Merge(filename string, fullValidation bool, results []*scraper.Result) *FileResult {
	log := logger.ComponentLogger("merge").With(logger.FieldFile, filename)
	out := &FileResult{Filename: filename}

	var contributors []*scraper.Result
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Scrapers = append(out.Scrapers, summarize(r))
		if !r.Contributes() {
			msg := fmt.Sprintf("Scraper %s failed and was excluded.", r.Scraper)
			if r.Err != nil {
				msg = fmt.Sprintf("Scraper %s failed and was excluded: %v", r.Scraper, r.Err)
			}
			out.Warnings = append(out.Warnings, Finding{Scraper: r.Scraper, Kind: scraper.KindToolInvocation, Message: msg})
			log.Warnw("scraper excluded from merge", logger.FieldScraper, r.Scraper, logger.FieldError, r.Err)
			continue
		}
		contributors = append(contributors, r)
		for _, e := range r.Errors {
			out.Errors = append(out.Errors, Finding{Scraper: r.Scraper, Kind: e.Kind, Message: e.Message})
		}
	}

	streamCount := 0
	for _, r := range contributors {
		if len(r.Streams) > streamCount {
			streamCount = len(r.Streams)
		}
	}
	for i := 0; i < streamCount; i++ {
		out.Streams = append(out.Streams, mergeStream(i, contributors, out))
	}
	for _, c := range out.Conflicts {
		log.Infow("conflicting values",
			logger.FieldStream, c.Index,
			logger.FieldField, c.Field,
			"kept", c.Kept,
			"rejected", c.Rejected,
			logger.FieldScraper, c.Scraper,
		)
	}

	out.Mimetype, out.Version = identify(out.Streams, contributors)
	out.WellFormed = verdict(fullValidation, contributors)
	if fullValidation && len(contributors) == 0 {
		out.Errors = append(out.Errors, Finding{Kind: scraper.KindToolInvocation, Message: NoContributionMessage})
	}
	return out
}

func summarize(r *scraper.Result) Summary {
	return Summary{
		Scraper:    r.Scraper,
		State:      r.State,
		WellFormed: r.WellFormed,
		Messages:   r.Messages,
		Errors:     r.ErrorMessages(),
		DurationMS: r.Duration.Milliseconds(),
	}
}

// streamType is the first concrete stream type reported for index i.
func streamType(i int, contributors []*scraper.Result) string {
	for _, r := range contributors {
		if i >= len(r.Streams) {
			continue
		}
		if t, ok := r.Streams[i].Get(metadata.FieldStreamType).Get(); ok {
			return t
		}
	}
	return ""
}

// fieldOrder is the union of field names at index i in encounter order.
func fieldOrder(i int, contributors []*scraper.Result) []string {
	seen := make(map[string]bool)
	var fields []string
	for _, r := range contributors {
		if i >= len(r.Streams) {
			continue
		}
		for _, f := range r.Streams[i].Fields() {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}

type choice struct {
	value metadata.Value
	by    string
	owner bool
}

func mergeStream(i int, contributors []*scraper.Result, out *FileResult) *metadata.Stream {
	st := streamType(i, contributors)
	merged := metadata.NewStream()

	for _, field := range fieldOrder(i, contributors) {
		var c choice
		for _, r := range contributors {
			if i >= len(r.Streams) {
				continue
			}
			v, ok := r.Streams[i].Lookup(field)
			if !ok || v.IsUnresolved() {
				continue
			}
			owner := r.Owner(st)
			c = pick(c, v, r.Scraper, owner, i, field, out)
		}
		if c.value.IsUnresolved() {
			out.Warnings = append(out.Warnings, Finding{
				Kind:    scraper.KindIncompleteMetadata,
				Message: fmt.Sprintf("Field %s of stream %d was not resolved.", field, i),
			})
		}
		merged.Set(field, c.value)
	}
	merged.SetIndex(i)
	return merged
}

// pick folds one more value into the current choice.
func pick(c choice, v metadata.Value, by string, owner bool, index int, field string, out *FileResult) choice {
	switch {
	case v.IsNotApplicable():
		if owner && !(c.value.IsConcrete() && c.owner) {
			return choice{value: v, by: by, owner: true}
		}
		if c.value.IsUnresolved() {
			return choice{value: v, by: by, owner: owner}
		}
		return c
	case c.value.IsUnresolved():
		return choice{value: v, by: by, owner: owner}
	case c.value.IsNotApplicable():
		if c.owner {
			return c
		}
		return choice{value: v, by: by, owner: owner}
	default:
		kept, _ := c.value.Get()
		got, _ := v.Get()
		if kept != got {
			out.Conflicts = append(out.Conflicts, Conflict{
				Index:    index,
				Field:    field,
				Kept:     kept,
				KeptBy:   c.by,
				Rejected: got,
				Scraper:  by,
			})
			out.Warnings = append(out.Warnings, Finding{
				Scraper: by,
				Kind:    scraper.KindInconsistentIdentification,
				Message: fmt.Sprintf("Conflict in stream %d field %s: kept %q from %s, rejected %q.", index, field, kept, c.by, got),
			})
		}
		return c
	}
}

// identify takes the mimetype and version from the merged first stream,
// falling back to what the scrapers identified.
func identify(streams []*metadata.Stream, contributors []*scraper.Result) (mimetype, version string) {
	if len(streams) > 0 {
		mimetype, _ = streams[0].Get(metadata.FieldMimetype).Get()
		version, _ = streams[0].Get(metadata.FieldVersion).Get()
	}
	for _, r := range contributors {
		if mimetype == "" && r.Mimetype != "" {
			mimetype = r.Mimetype
		}
		if version == "" && r.Version != "" {
			version = r.Version
		}
	}
	if version == metadata.Unap || version == metadata.Unav {
		version = ""
	}
	return mimetype, version
}

func verdict(fullValidation bool, contributors []*scraper.Result) metadata.Verdict {
	if !fullValidation || len(contributors) == 0 {
		return metadata.Unknown
	}
	for _, r := range contributors {
		if r.HasErrors() || r.WellFormed == metadata.NotWellFormed {
			return metadata.NotWellFormed
		}
	}
	return metadata.WellFormed
}
