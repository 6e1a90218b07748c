package scraper

import (
	"time"

	"github.com/gobeaver/filescraper/metadata"
)

// State is a runner lifecycle state.
type State int

const (
	StateInit State = iota
	StateRunning
	StateSuccess
	StateSkipped
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateSkipped:
		return "skipped"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of one scraper run.
type Result struct {
	// Scraper is the descriptor name.
	Scraper string

	// State is the terminal runner state.
	State State

	// FullValidation records whether a well-formedness check was requested.
	FullValidation bool

	// Mimetype and Version are what the scraper identified. They fall back
	// to the prediction when the scraper did not resolve them.
	Mimetype string
	Version  string

	// Streams are ordered by index; index 0 is the container when the file
	// has more than one stream.
	Streams []*metadata.Stream

	// WellFormed is the scraper's verdict.
	WellFormed metadata.Verdict

	// Messages and Errors are in report order.
	Messages []string
	Errors   []Issue

	// Owns lists the stream types whose canonical field list this scraper owns.
	Owns []string

	// Err is the cause of a fatal outcome.
	Err error

	// Duration is how long the run took.
	Duration time.Duration
}

// Contributes reports whether the result takes part in merging.
func (r *Result) Contributes() bool {
	return r.State == StateSuccess || r.State == StateSkipped
}

// HasErrors reports whether the error log is non-empty.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Owner reports whether the scraper owns the given stream type.
func (r *Result) Owner(streamType string) bool {
	for _, t := range r.Owns {
		if t == streamType {
			return true
		}
	}
	return false
}

// ErrorMessages returns the error log as plain strings.
func (r *Result) ErrorMessages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return msgs
}

// ResultBuilder helps strategies construct a Result.
type ResultBuilder struct {
	result    Result
	invalid   bool
	startTime time.Time
}

// NewResultBuilder creates a builder for a run of d against req.
func NewResultBuilder(d *Descriptor, req *Request) *ResultBuilder {
	return &ResultBuilder{
		result: Result{
			Scraper:        d.Name,
			FullValidation: req.FullValidation,
			Mimetype:       req.Mimetype,
			Version:        req.Version,
			Owns:           d.Owns,
		},
		startTime: time.Now(),
	}
}

// AddMessage appends an informational message.
func (b *ResultBuilder) AddMessage(msg string) *ResultBuilder {
	if msg != "" {
		b.result.Messages = append(b.result.Messages, msg)
	}
	return b
}

// AddError appends an error; any error makes the verdict false.
func (b *ResultBuilder) AddError(kind ErrorKind, msg string) *ResultBuilder {
	if msg != "" {
		b.result.Errors = append(b.result.Errors, Issue{Kind: kind, Message: msg})
	}
	return b
}

// Invalidate marks the file as not well-formed without adding an error.
func (b *ResultBuilder) Invalidate() *ResultBuilder {
	b.invalid = true
	return b
}

// AddStream appends a stream record.
func (b *ResultBuilder) AddStream(s *metadata.Stream) *ResultBuilder {
	b.result.Streams = append(b.result.Streams, s)
	return b
}

// Streams returns the streams added so far.
func (b *ResultBuilder) Streams() []*metadata.Stream {
	return b.result.Streams
}

// Messages returns the messages added so far.
func (b *ResultBuilder) Messages() []string {
	return b.result.Messages
}

// HasErrors reports whether any error was added.
func (b *ResultBuilder) HasErrors() bool {
	return len(b.result.Errors) > 0
}

// identify sets Mimetype and Version from the first stream when resolved.
func (b *ResultBuilder) identify() {
	if len(b.result.Streams) == 0 {
		return
	}
	first := b.result.Streams[0]
	if m, ok := first.Get(metadata.FieldMimetype).Get(); ok && m != "" && m != metadata.Unav {
		b.result.Mimetype = m
	}
	if v, ok := first.Get(metadata.FieldVersion).Get(); ok && v != metadata.Unav && v != metadata.Unap {
		b.result.Version = v
	}
}

// Build finalizes the result in the given terminal state.
func (b *ResultBuilder) Build(state State) *Result {
	b.result.State = state
	b.result.Duration = time.Since(b.startTime)
	switch {
	case state != StateSuccess || !b.result.FullValidation:
		b.result.WellFormed = metadata.Unknown
	case b.invalid || len(b.result.Errors) > 0:
		b.result.WellFormed = metadata.NotWellFormed
	default:
		b.result.WellFormed = metadata.WellFormed
	}
	return &b.result
}
