package scraper

import (
	"context"
	"fmt"
	"sort"
)

// Strategy performs the scraping work for a descriptor. It reports into the
// session's ResultBuilder and returns an error only when the validator could
// not be run at all; such errors make the run fatal.
type Strategy interface {
	Scrape(ctx context.Context, s *Session) error
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(ctx context.Context, s *Session) error

// Scrape calls f.
func (f StrategyFunc) Scrape(ctx context.Context, s *Session) error {
	return f(ctx, s)
}

// Descriptor is an immutable record describing one scraper: which requests
// it accepts and how it produces a result.
type Descriptor struct {
	// Name identifies the scraper in results and logs.
	Name string

	// Supported maps each accepted mimetype to its known versions.
	Supported map[string][]string

	// OnlyWellformed scrapers only check well-formedness; they are not
	// selected when full validation is off.
	OnlyWellformed bool

	// AllowVersions accepts versions missing from Supported.
	AllowVersions bool

	// RequiredParams must all be present in the request parameters.
	RequiredParams []string

	// Owns lists the stream types whose canonical field list this scraper
	// defines. Its NotApplicable values override other scrapers on merge.
	Owns []string

	// Strategy does the work.
	Strategy Strategy
}

// IsSupported reports whether the descriptor accepts a request for the given
// mimetype, version, validation depth and parameters. An empty version is
// treated as absent.
func (d *Descriptor) IsSupported(mimetype, version string, fullValidation bool, params Params) bool {
	versions, ok := d.Supported[mimetype]
	if !ok {
		return false
	}
	if version != "" && !containsString(versions, version) && !d.AllowVersions {
		return false
	}
	if !fullValidation && d.OnlyWellformed {
		return false
	}
	for _, p := range d.RequiredParams {
		if !params.Has(p) {
			return false
		}
	}
	return true
}

// Matches reports whether the descriptor accepts req.
func (d *Descriptor) Matches(req *Request) bool {
	return d.IsSupported(req.Mimetype, req.Version, req.FullValidation, req.Params)
}

// Mimetypes returns the accepted mimetypes in sorted order.
func (d *Descriptor) Mimetypes() []string {
	types := make([]string, 0, len(d.Supported))
	for m := range d.Supported {
		types = append(types, m)
	}
	sort.Strings(types)
	return types
}

// checkSupported re-validates what the scraper identified against its own
// table. Mismatches are recorded, never fatal.
func (d *Descriptor) checkSupported(r *Result) {
	if len(d.Supported) == 0 {
		return
	}
	if r.Mimetype == "" {
		r.Errors = append(r.Errors, Issue{
			Kind:    KindInconsistentIdentification,
			Message: "None is not a supported mimetype.",
		})
		return
	}
	versions, ok := d.Supported[r.Mimetype]
	if !ok || (r.Version != "" && !containsString(versions, r.Version) && !d.AllowVersions) {
		r.Errors = append(r.Errors, Issue{
			Kind:    KindInconsistentIdentification,
			Message: fmt.Sprintf("MIME type %s with version %s is not supported.", r.Mimetype, displayVersion(r.Version)),
		})
	}
}

func displayVersion(v string) string {
	if v == "" {
		return "None"
	}
	return v
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
