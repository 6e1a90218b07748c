package scraper

import (
	"github.com/gobeaver/filescraper/avstream"
	"github.com/gobeaver/filescraper/metadata"
)

// Built-in descriptor names.
const (
	NameFileMagic        = "FileMagic"
	NameMpegMediainfo    = "MpegMediainfo"
	NameMkvMediainfo     = "MkvMediainfo"
	NameMovMediainfo     = "MovMediainfo"
	NameWavMediainfo     = "WavMediainfo"
	NameFFMpegWellformed = "FFMpegWellformed"
	NamePngcheck         = "Pngcheck"
	NameDpx              = "Dpx"
	NameXmllint          = "Xmllint"
	NameSchematron       = "Schematron"
)

// Messages recorded by the built-in command scrapers on success.
const (
	AnalyzedMessage = "The file was analyzed successfully."
	ScrapedMessage  = "The file was scraped successfully."
)

// DefaultRegistry returns the built-in descriptors in merge priority order:
// content detection first, then metadata scrapers, then well-formedness
// checkers.
func DefaultRegistry(t Tools) *Registry {
	t = t.withDefaults()
	return NewRegistry(
		FileMagic(),
		MediainfoDescriptor(NameMpegMediainfo, t.Mediainfo, avstream.MPEGProfile,
			"video/mpeg", "video/mp4", "audio/mpeg", "audio/mp4"),
		MediainfoDescriptor(NameMkvMediainfo, t.Mediainfo, avstream.BaseProfile,
			"video/x-matroska"),
		MediainfoDescriptor(NameMovMediainfo, t.Mediainfo, avstream.BaseProfile,
			"video/quicktime", "video/dv"),
		MediainfoDescriptor(NameWavMediainfo, t.Mediainfo, avstream.BaseProfile,
			"audio/x-wav"),
		FFMpegWellformed(t.FFmpeg),
		Pngcheck(t.Pngcheck),
		Dpx(t.Dpxv),
		Xmllint(t.Xmllint),
		Schematron(t),
	)
}

// FFMpegWellformed decodes audio/video streams with ffmpeg; anything ffmpeg
// reports on stderr makes the file invalid.
func FFMpegWellformed(bin string) *Descriptor {
	return &Descriptor{
		Name: NameFFMpegWellformed,
		Supported: map[string][]string{
			"video/mpeg":       {"1", "2"},
			"video/mp4":        {""},
			"audio/mpeg":       {"1", "2"},
			"audio/mp4":        {""},
			"video/MP1S":       {""},
			"video/MP2P":       {""},
			"video/MP2T":       {""},
			"video/x-matroska": {""},
			"video/quicktime":  {""},
			"video/dv":         {""},
		},
		OnlyWellformed: true,
		AllowVersions:  true,
		Strategy: &commandStrategy{
			argv: func(file string) []string {
				return []string{bin, "-v", "error", "-i", file, "-f", "null", "-"}
			},
			rule:       EmptyStderr(),
			onExitZero: AnalyzedMessage,
			streamType: metadata.Unresolved,
		},
	}
}

// Pngcheck verifies PNG chunk structure.
func Pngcheck(bin string) *Descriptor {
	return &Descriptor{
		Name:           NamePngcheck,
		Supported:      map[string][]string{"image/png": {"1.2"}},
		OnlyWellformed: true,
		AllowVersions:  true,
		Strategy: &commandStrategy{
			argv:       func(file string) []string { return []string{bin, file} },
			rule:       StderrOnFailure(ExitZero()),
			streamType: metadata.Of(metadata.StreamImage),
		},
	}
}

// Dpx verifies DPX 2.0 images with dpxv.
func Dpx(bin string) *Descriptor {
	return &Descriptor{
		Name:           NameDpx,
		Supported:      map[string][]string{"image/x-dpx": {"2.0"}},
		OnlyWellformed: true,
		Strategy: &commandStrategy{
			argv:       func(file string) []string { return []string{bin, file} },
			rule:       StderrOnFailure(ExitZero()),
			version:    metadata.Of("2.0"),
			streamType: metadata.Of(metadata.StreamImage),
		},
	}
}

// Xmllint checks that an XML document is well-formed.
func Xmllint(bin string) *Descriptor {
	return &Descriptor{
		Name:           NameXmllint,
		Supported:      map[string][]string{"text/xml": {"1.0"}},
		OnlyWellformed: true,
		AllowVersions:  true,
		Strategy: &commandStrategy{
			argv:       func(file string) []string { return []string{bin, "--noout", file} },
			rule:       StderrOnFailure(ExitZero()),
			onExitZero: AnalyzedMessage,
			streamType: metadata.Of(metadata.StreamText),
		},
	}
}
