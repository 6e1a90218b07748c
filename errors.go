package filescraper

import (
	"github.com/cockroachdb/errors"

	"github.com/gobeaver/filescraper/scraper"
)

// Common scrape errors
var (
	ErrUnsupportedFormat    = scraper.ErrUnsupportedFormat
	ErrToolInvocation       = scraper.ErrToolInvocation
	ErrEmptyFilename        = errors.New("filename is required")
	ErrNotRegularFile       = errors.New("not a regular file")
	ErrNoScraperContributed = errors.New("no scraper produced a result")
)

// RequestError records an invalid scrape request and the file it named
type RequestError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsUnsupportedFormat reports whether an error indicates that no scraper
// accepts the file's format
func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}

// IsToolInvocation reports whether an error indicates that a validator could
// not be run
func IsToolInvocation(err error) bool {
	return errors.Is(err, ErrToolInvocation)
}

// IsEmptyFilename reports whether an error indicates a request without a file
func IsEmptyFilename(err error) bool {
	return errors.Is(err, ErrEmptyFilename)
}
