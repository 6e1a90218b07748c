package detector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectBytes(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		mime    string
		version string
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "image/png", ""},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, "image/jpeg", ""},
		{"gif89a", []byte("GIF89a\x01\x00\x01\x00"), "image/gif", "1989a"},
		{"pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), "application/pdf", "1.4"},
		{"dpx", append([]byte("SDPX\x00\x00\x08\x00V2.0\x00\x00\x00\x00"), make([]byte, 16)...), "image/x-dpx", "2.0"},
		{"wav", []byte("RIFF\x24\x08\x00\x00WAVEfmt "), "audio/x-wav", ""},
		{"avi", []byte("RIFF\x24\x08\x00\x00AVI LIST"), "video/avi", ""},
		{"mkv", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81}, "video/x-matroska", ""},
		{"m4a", []byte("\x00\x00\x00\x20ftypM4A \x00\x00\x00\x00"), "audio/mp4", ""},
		{"mpeg-1 video", []byte{0x00, 0x00, 0x01, 0xB3, 0x14, 0x00, 0xF0, 0x13}, "video/mpeg", ""},
		{"xml", []byte(`<?xml version="1.0" encoding="UTF-8"?><root/>`), "text/xml", "1.0"},
		{"xhtml with declaration", []byte(`<?xml version="1.0"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>t</title></head></html>`), "application/xhtml+xml", "1.0"},
		{"xhtml without declaration", []byte(`<html xmlns="http://www.w3.org/1999/xhtml" lang="en"><head><title>t</title></head></html>`), "application/xhtml+xml", "1.0"},
		{"html", []byte(`<!DOCTYPE html><html lang="en"><head><title>t</title></head></html>`), "text/html", ""},
		{"xml in xhtml namespace without html root", []byte(`<?xml version="1.0"?><doc xmlns:h="http://www.w3.org/1999/xhtml"/>`), "text/xml", "1.0"},
		{"empty", nil, OctetStream, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DetectBytes(tt.data)
			assert.Equal(t, tt.mime, d.Mimetype)
			assert.Equal(t, tt.version, d.Version)
		})
	}
}

func TestDetectBytesFallsBackToSniffer(t *testing.T) {
	d := DetectBytes([]byte("plain words of text\nand another line\n"))
	assert.Equal(t, "text/plain", d.Mimetype)
	assert.Equal(t, "UTF-8", d.Charset)
}

func TestDetectReader(t *testing.T) {
	d, err := Detect(strings.NewReader(`<?xml version="1.0"?><a/>`))
	require.NoError(t, err)
	assert.Equal(t, "text/xml", d.Mimetype)
	assert.NotEmpty(t, d.Charset)
}

func TestByExtension(t *testing.T) {
	assert.Equal(t, "video/x-matroska", ByExtension("clip.MKV"))
	assert.Equal(t, "image/x-dpx", ByExtension("/scans/frame_0001.dpx"))
	assert.Equal(t, "application/xhtml+xml", ByExtension("page.xhtml"))
	assert.Equal(t, "", ByExtension("README"))
}

func TestGuessUsesExtensionForUnknownContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.ts")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x13, 0x37, 0x00, 0xFE, 0xED}, 0o600))

	d, err := Guess(path)
	require.NoError(t, err)
	assert.Equal(t, "video/MP2T", d.Mimetype)

	_, err = Guess(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestStreamType(t *testing.T) {
	assert.Equal(t, "image", StreamType("image/png"))
	assert.Equal(t, "text", StreamType("text/xml"))
	assert.Equal(t, "audio", StreamType("audio/x-wav"))
	assert.Equal(t, "videocontainer", StreamType("video/mp4"))
	assert.Equal(t, "binary", StreamType("application/pdf"))
}
