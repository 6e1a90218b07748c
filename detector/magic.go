// Package detector predicts a file's mimetype and version from its content.
//
// Detection is an upstream input to scraping: callers use it to fill in the
// predicted mimetype of a request, and the identification scraper uses it
// to cross-check that prediction.
package detector

import (
	"bytes"
	"io"
	"mime"
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gabriel-vasile/mimetype"
)

// OctetStream is reported when nothing more specific is known.
const OctetStream = "application/octet-stream"

// sniffLen is how many bytes detection reads.
const sniffLen = 3072

// Detection is the outcome of content detection.
type Detection struct {
	Mimetype string
	// Version is empty when the format carries no detectable version.
	Version string
	// Charset is set for text formats.
	Charset string
}

// MagicSignature defines a file type signature
type MagicSignature struct {
	MIME   string
	Offset int    // Offset from start of file
	Magic  []byte // Magic bytes to match
}

// magicSignatures is ordered by specificity (most specific first).
var magicSignatures = []MagicSignature{
	// Images
	{MIME: "image/png", Offset: 0, Magic: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{MIME: "image/jpeg", Offset: 0, Magic: []byte{0xFF, 0xD8, 0xFF}},
	{MIME: "image/gif", Offset: 0, Magic: []byte("GIF87a")},
	{MIME: "image/gif", Offset: 0, Magic: []byte("GIF89a")},
	{MIME: "image/tiff", Offset: 0, Magic: []byte{0x49, 0x49, 0x2A, 0x00}}, // Little endian
	{MIME: "image/tiff", Offset: 0, Magic: []byte{0x4D, 0x4D, 0x00, 0x2A}}, // Big endian
	{MIME: "image/jp2", Offset: 0, Magic: []byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50, 0x20, 0x20}},
	{MIME: "image/x-dpx", Offset: 0, Magic: []byte("SDPX")}, // Big endian
	{MIME: "image/x-dpx", Offset: 0, Magic: []byte("XPDS")}, // Little endian

	// Documents
	{MIME: "application/pdf", Offset: 0, Magic: []byte("%PDF-")},

	// Audio
	{MIME: "audio/x-wav", Offset: 0, Magic: []byte("RIFF")}, // Check WAVE at offset 8
	{MIME: "audio/flac", Offset: 0, Magic: []byte("fLaC")},
	{MIME: "audio/mpeg", Offset: 0, Magic: []byte("ID3")},
	{MIME: "audio/mpeg", Offset: 0, Magic: []byte{0xFF, 0xFB}},
	{MIME: "audio/mpeg", Offset: 0, Magic: []byte{0xFF, 0xF3}},

	// Video
	{MIME: "video/x-matroska", Offset: 0, Magic: []byte{0x1A, 0x45, 0xDF, 0xA3}},
	{MIME: "video/mp4", Offset: 4, Magic: []byte("ftyp")},
	{MIME: "video/quicktime", Offset: 4, Magic: []byte("moov")},
	{MIME: "video/MP2P", Offset: 0, Magic: []byte{0x00, 0x00, 0x01, 0xBA}},
	{MIME: "video/mpeg", Offset: 0, Magic: []byte{0x00, 0x00, 0x01, 0xB3}},

	// Markup
	{MIME: "text/xml", Offset: 0, Magic: []byte("<?xml")},
	{MIME: "text/html", Offset: 0, Magic: []byte("<!DOCTYPE html")},
	{MIME: "text/html", Offset: 0, Magic: []byte("<!doctype html")},
	{MIME: "text/html", Offset: 0, Magic: []byte("<html")},
}

// XHTMLNamespace is the namespace of an XHTML root element.
const XHTMLNamespace = "http://www.w3.org/1999/xhtml"

var (
	xmlVersionExpr   = regexp.MustCompile(`^<\?xml[^>]*\bversion\s*=\s*["']([0-9.]+)["']`)
	pdfVersionExpr   = regexp.MustCompile(`^%PDF-([0-9]\.[0-9])`)
	xhtmlRootExpr    = regexp.MustCompile(`<html\b[^>]*\bxmlns\s*=\s*["']` + regexp.QuoteMeta(XHTMLNamespace) + `["']`)
	xhtmlVersionExpr = regexp.MustCompile(`<!DOCTYPE\s+html\s+PUBLIC\s+"-//W3C//DTD XHTML ([0-9]\.[0-9])`)
)

// DetectFile detects the content of the file at path.
func DetectFile(path string) (Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Detection{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return Detect(f)
}

// Detect reads the head of r and detects its content.
func Detect(r io.Reader) (Detection, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Detection{}, errors.Wrap(err, "read for detection")
	}
	return DetectBytes(buf[:n]), nil
}

// DetectBytes detects the content of data using the magic table first and
// falling back to a general content sniffer.
func DetectBytes(data []byte) Detection {
	if len(data) == 0 {
		return Detection{Mimetype: OctetStream}
	}

	if m := detectByMagic(data); m != "" {
		d := Detection{Mimetype: refineDetection(data, m)}
		d.Version = detectVersion(data, d.Mimetype)
		if StreamType(d.Mimetype) == "text" {
			d.Charset = charsetOf(data)
		}
		return d
	}

	mt, params, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil {
		return Detection{Mimetype: OctetStream}
	}
	if mt == "application/xml" {
		mt = "text/xml"
	}
	return Detection{
		Mimetype: mt,
		Version:  detectVersion(data, mt),
		Charset:  strings.ToUpper(params["charset"]),
	}
}

// detectByMagic checks data against known magic signatures
func detectByMagic(data []byte) string {
	for _, sig := range magicSignatures {
		if sig.Offset+len(sig.Magic) > len(data) {
			continue
		}
		if bytes.Equal(data[sig.Offset:sig.Offset+len(sig.Magic)], sig.Magic) {
			return sig.MIME
		}
	}
	return ""
}

// refineDetection handles formats that share magic bytes.
func refineDetection(data []byte, initial string) string {
	switch initial {
	case "audio/x-wav":
		if len(data) >= 12 {
			switch string(data[8:12]) {
			case "WAVE":
				return "audio/x-wav"
			case "AVI ":
				return "video/avi"
			}
		}
		return OctetStream

	case "video/mp4":
		if len(data) >= 12 {
			switch string(data[8:12]) {
			case "M4A ":
				return "audio/mp4"
			case "qt  ":
				return "video/quicktime"
			}
		}
		return initial

	case "text/xml", "text/html":
		if xhtmlRootExpr.Match(data) {
			return "application/xhtml+xml"
		}
		return initial

	default:
		return initial
	}
}

func detectVersion(data []byte, mt string) string {
	switch mt {
	case "text/xml":
		if m := xmlVersionExpr.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	case "application/xhtml+xml":
		if m := xhtmlVersionExpr.FindSubmatch(data); m != nil {
			return string(m[1])
		}
		return "1.0"
	case "application/pdf":
		if m := pdfVersionExpr.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	case "image/gif":
		if len(data) >= 6 {
			return "19" + string(data[3:6])
		}
	case "image/x-dpx":
		if len(data) >= 12 && data[8] == 'V' {
			return string(bytes.TrimRight(data[9:12], "\x00"))
		}
	}
	return ""
}

func charsetOf(data []byte) string {
	_, params, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil {
		return ""
	}
	return strings.ToUpper(params["charset"])
}

// StreamType returns the stream type of a whole-file mimetype.
func StreamType(mt string) string {
	switch {
	case strings.HasPrefix(mt, "image/"):
		return "image"
	case strings.HasPrefix(mt, "text/"), mt == "application/xhtml+xml":
		return "text"
	case strings.HasPrefix(mt, "audio/"):
		return "audio"
	case strings.HasPrefix(mt, "video/"):
		return "videocontainer"
	default:
		return "binary"
	}
}
