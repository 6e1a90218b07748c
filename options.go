package filescraper

import (
	"github.com/gobeaver/filescraper/scraper"
)

// Option represents a scrape option
type Option func(*Options)

// Options contains all possible options for a scrape
type Options struct {
	// Version is the predicted format version; empty means absent
	Version string

	// FullValidation requests a well-formedness check in addition to
	// metadata scraping
	FullValidation bool

	// Params carries scraper-specific options such as the schematron rule file
	Params scraper.Params

	// Checksums lists fixity values to record on the result
	Checksums []ChecksumAlgorithm
}

func defaultOptions() Options {
	return Options{
		FullValidation: true,
		Params:         scraper.Params{},
	}
}

// WithVersion sets the predicted format version
func WithVersion(version string) Option {
	return func(o *Options) {
		o.Version = version
	}
}

// WithFullValidation toggles the well-formedness check
func WithFullValidation(full bool) Option {
	return func(o *Options) {
		o.FullValidation = full
	}
}

// WithParams merges params into the scraper parameters
func WithParams(params scraper.Params) Option {
	return func(o *Options) {
		for k, v := range params {
			o.Params[k] = v
		}
	}
}

// WithParam sets one scraper parameter
func WithParam(key string, value any) Option {
	return func(o *Options) {
		o.Params[key] = value
	}
}

// WithSchematron enables rule-based XML validation against the given
// schematron file
func WithSchematron(path string) Option {
	return WithParam(scraper.ParamSchematron, path)
}

// WithVerbose keeps duplicate entries in validator reports
func WithVerbose(verbose bool) Option {
	return WithParam(scraper.ParamVerbose, verbose)
}

// WithCache toggles reuse of compiled schematron validators
func WithCache(enabled bool) Option {
	return WithParam(scraper.ParamCache, enabled)
}

// WithExtraHash adds a discriminator to the compiled validator cache key
func WithExtraHash(extra string) Option {
	return WithParam(scraper.ParamExtraHash, extra)
}

// WithChecksums records the given checksums of the file on the result
func WithChecksums(algorithms ...ChecksumAlgorithm) Option {
	return func(o *Options) {
		o.Checksums = append(o.Checksums, algorithms...)
	}
}
