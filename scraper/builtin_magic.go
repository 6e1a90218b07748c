package scraper

import (
	"context"
	"fmt"

	"github.com/gobeaver/filescraper/detector"
	"github.com/gobeaver/filescraper/metadata"
)

// FileMagic identifies files in process from their content. It is the
// highest priority scraper for the formats it knows, so its mimetype,
// version and charset win the merge.
func FileMagic() *Descriptor {
	return &Descriptor{
		Name: NameFileMagic,
		Supported: map[string][]string{
			"image/png":             {"1.2"},
			"image/jpeg":            {"1.01"},
			"image/gif":             {"1987a", "1989a"},
			"image/tiff":            {"6.0"},
			"application/pdf":       {"1.4"},
			"text/plain":            nil,
			"text/xml":              {"1.0"},
			"text/html":             {"4.01", "5.0"},
			"application/xhtml+xml": {"1.0"},
		},
		AllowVersions: true,
		Strategy:      StrategyFunc(scrapeMagic),
	}
}

func scrapeMagic(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	det, err := detector.DetectFile(s.Request.Filename)
	if err != nil {
		return NewScrapeError(KindToolInvocation, NameFileMagic, err.Error())
	}

	if det.Mimetype != s.Request.Mimetype {
		s.Result.AddError(KindInconsistentIdentification,
			fmt.Sprintf("Predicted mimetype %s, but content is %s.", s.Request.Mimetype, det.Mimetype))
	}

	streamType := detector.StreamType(det.Mimetype)
	stream := metadata.NewStream()
	stream.Set(metadata.FieldMimetype, metadata.Of(det.Mimetype))
	stream.Set(metadata.FieldVersion, metadata.OfOr(det.Version))
	stream.Set(metadata.FieldStreamType, metadata.Of(streamType))
	stream.SetIndex(0)
	if streamType == metadata.StreamText {
		stream.Set(metadata.FieldCharset, metadata.OfOr(det.Charset))
	}
	s.Result.AddStream(stream)
	s.Result.AddMessage(AnalyzedMessage)
	return nil
}
