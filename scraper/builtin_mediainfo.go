package scraper

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/gobeaver/filescraper/avstream"
	"github.com/gobeaver/filescraper/logger"
)

// MediainfoDescriptor builds a metadata scraper reading mediainfo's JSON
// report and resolving it with profile. It owns the audio/video stream
// types.
func MediainfoDescriptor(name, bin string, profile *avstream.Profile, mimetypes ...string) *Descriptor {
	supported := make(map[string][]string, len(mimetypes))
	for _, m := range mimetypes {
		supported[m] = nil
	}
	return &Descriptor{
		Name:          name,
		Supported:     supported,
		AllowVersions: true,
		Owns:          avstream.OwnedStreamTypes,
		Strategy:      &mediainfoStrategy{bin: bin, profile: profile},
	}
}

type mediainfoStrategy struct {
	bin     string
	profile *avstream.Profile
}

// Scrape implements Strategy.
func (m *mediainfoStrategy) Scrape(ctx context.Context, s *Session) error {
	out, err := s.Run(ctx, m.bin, "--Output=JSON", s.Request.Filename)
	if err != nil {
		return err
	}

	tracks, parseErr := avstream.ParseMediainfoJSON(out.Stdout)
	if parseErr == nil && out.ExitCode != 0 {
		parseErr = errors.Newf("mediainfo exited with code %d: %s", out.ExitCode, strings.TrimSpace(string(out.Stderr)))
	}
	if parseErr == nil && len(tracks) == 0 {
		parseErr = errors.New("mediainfo found no tracks")
	}
	if parseErr != nil {
		s.Result.AddError(KindValidation, "Error in scraping file.")
		s.Result.AddError(KindValidation, parseErr.Error())
		return nil
	}

	streams := avstream.Normalize(tracks, m.profile, s.Request.Mimetype)
	for _, st := range streams {
		s.Result.AddStream(st)
	}
	s.Log.Debugw("normalized streams",
		logger.FieldCount, len(streams),
		logger.FieldMimetype, s.Request.Mimetype,
	)
	s.Result.AddMessage(ScrapedMessage)
	return nil
}
