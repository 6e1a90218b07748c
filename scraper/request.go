package scraper

import (
	"strings"

	"github.com/spf13/cast"
)

// Well-known parameter names.
const (
	// ParamSchematron is the path of a schematron rule file. Its presence
	// enables the rule-based validator.
	ParamSchematron = "schematron"
	// ParamVerbose disables de-duplication of validator reports.
	ParamVerbose = "verbose"
	// ParamCache toggles the compiled-rule cache.
	ParamCache = "cache"
	// ParamExtraHash is an extra cache discriminator.
	ParamExtraHash = "extra_hash"
)

// Params carries scraper-specific options. Values may be strings, as they
// arrive from a command line, or native Go values.
type Params map[string]any

// Has reports whether key is present with a non-empty value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns the value of key as a string.
func (p Params) String(key string) string {
	return cast.ToString(p[key])
}

// Bool returns the value of key as a bool, or def when absent or unparseable.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Request describes one scrape of one file.
type Request struct {
	// Filename is the path of the file to scrape.
	Filename string

	// Mimetype is the predicted mimetype.
	Mimetype string

	// Version is the predicted version; empty means absent.
	Version string

	// FullValidation requests a well-formedness check.
	FullValidation bool

	// Params holds scraper-specific options.
	Params Params
}
