package scraper

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorKind categorizes a scrape problem.
type ErrorKind string

const (
	// KindUnsupportedFormat means no descriptor matched the request.
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	// KindToolInvocation means a validator could not be launched or was killed.
	// It is the only fatal kind; it removes the scraper's contribution.
	KindToolInvocation ErrorKind = "tool_invocation_failure"
	// KindValidation means the validator ran and judged the file invalid.
	KindValidation ErrorKind = "validation_failure"
	// KindInconsistentIdentification means a scraper detected a mimetype or
	// version that disagrees with the prediction or its own support table.
	KindInconsistentIdentification ErrorKind = "inconsistent_identification"
	// KindIncompleteMetadata means no scraper resolved a field.
	KindIncompleteMetadata ErrorKind = "incomplete_metadata"
)

// Sentinel causes, usable with errors.Is on any ScrapeError of that kind.
var (
	ErrUnsupportedFormat          = errors.New("unsupported format")
	ErrToolInvocation             = errors.New("tool invocation failure")
	ErrValidation                 = errors.New("validation failure")
	ErrInconsistentIdentification = errors.New("inconsistent identification")
	ErrIncompleteMetadata         = errors.New("incomplete metadata")

	// ErrAlreadyRun is returned when a one-shot runner is run twice.
	ErrAlreadyRun = errors.New("scraper already run")
)

var kindSentinels = map[ErrorKind]error{
	KindUnsupportedFormat:          ErrUnsupportedFormat,
	KindToolInvocation:             ErrToolInvocation,
	KindValidation:                 ErrValidation,
	KindInconsistentIdentification: ErrInconsistentIdentification,
	KindIncompleteMetadata:         ErrIncompleteMetadata,
}

// ScrapeError is a categorized problem reported by a scraper.
type ScrapeError struct {
	// Kind categorizes the problem.
	Kind ErrorKind

	// Scraper is the descriptor name, when known.
	Scraper string

	// Message is the human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// NewScrapeError creates a ScrapeError.
func NewScrapeError(kind ErrorKind, scraper, message string) *ScrapeError {
	return &ScrapeError{Kind: kind, Scraper: scraper, Message: message}
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	prefix := string(e.Kind)
	if e.Scraper != "" {
		prefix = e.Scraper + ": " + prefix
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *ScrapeError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// IsKind reports whether err is a ScrapeError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// KindOf returns the kind of a ScrapeError, or "" for other errors.
func KindOf(err error) ErrorKind {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// Issue is a message recorded in a result's error log.
type Issue struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
}

func (i Issue) String() string {
	return i.Message
}
