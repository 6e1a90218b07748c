package scraper

import (
	"context"
	"strings"

	"github.com/gobeaver/filescraper/metadata"
)

// commandStrategy runs one validator process and judges it with a Rule.
// It reports a single stream that leaves identification to other scrapers.
type commandStrategy struct {
	argv func(file string) []string
	rule Rule

	// onExitZero is recorded as a message when the validator exits 0.
	onExitZero string

	version    metadata.Value
	streamType metadata.Value
}

// Scrape implements Strategy.
func (c *commandStrategy) Scrape(ctx context.Context, s *Session) error {
	out, err := s.Run(ctx, c.argv(s.Request.Filename)...)
	if err != nil {
		return err
	}

	if out.ExitCode == 0 {
		s.Result.AddMessage(c.onExitZero)
	}
	ok, errs := c.rule(out)
	for _, e := range errs {
		s.Result.AddError(KindValidation, e)
	}
	if !ok {
		s.Result.Invalidate()
	}
	s.Result.AddMessage(strings.TrimSpace(string(out.Stdout)))

	stream := metadata.NewStream()
	stream.Set(metadata.FieldMimetype, metadata.Unresolved)
	stream.Set(metadata.FieldVersion, c.version)
	stream.Set(metadata.FieldStreamType, c.streamType)
	stream.SetIndex(0)
	s.Result.AddStream(stream)
	return nil
}
