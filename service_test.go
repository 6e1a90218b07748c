package filescraper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/filescraper/merge"
	"github.com/gobeaver/filescraper/metadata"
	"github.com/gobeaver/filescraper/scraper"
	"github.com/gobeaver/filescraper/scraper/scrapertest"
)

const mpegVideoJSON = `{
  "media": {
    "track": [
      {"@type": "General", "Format": "MPEG Video", "FileSize": "98304"},
      {"@type": "Video", "Format": "MPEG Video", "Format_Version": "Version 1",
       "Width": "320", "Height": "240", "FrameRate": "30.000",
       "BitRate": "1150000", "BitRate_Mode": "CBR", "Duration": "0.080"}
    ]
  }
}`

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		CacheDir:          filepath.Join(t.TempDir(), "cache"),
		CacheEnabled:      true,
		SchematronXSLTDir: "/usr/share/iso_schematron_xslt1",
		MediainfoBin:      "mediainfo",
		FFmpegBin:         "ffmpeg",
		PngcheckBin:       "pngcheck",
		DpxvBin:           "dpxv",
		XsltprocBin:       "xsltproc",
		XmllintBin:        "xmllint",
		MaxParallelTools:  2,
		BatchWorkers:      2,
		LogLevel:          "info",
	}
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func field(t *testing.T, s *metadata.Stream, name string) string {
	t.Helper()
	v, ok := s.Get(name).Get()
	require.True(t, ok, "field %s is not concrete", name)
	return v
}

func TestServiceScrapeMPEGVideo(t *testing.T) {
	exec := scrapertest.NewExecutor().
		On("mediainfo", scrapertest.Reply{Stdout: mpegVideoJSON}).
		On("ffmpeg", scrapertest.Reply{})
	svc, err := New(testConfig(t), WithExecutor(exec))
	require.NoError(t, err)

	path := writeFile(t, "movie.mpg", []byte{0x00, 0x00, 0x01, 0xB3})
	res, err := svc.Scrape(context.Background(), path, "video/mpeg")
	require.NoError(t, err)
	require.NoError(t, Check(res))

	assert.Equal(t, path, res.Filename)
	assert.Equal(t, "video/mpeg", res.Mimetype)
	assert.Equal(t, "1", res.Version)
	assert.Equal(t, metadata.WellFormed, res.WellFormed)
	require.Len(t, res.Streams, 1)
	assert.Equal(t, "video", field(t, res.Streams[0], metadata.FieldStreamType))
	assert.Equal(t, "MPEG Video", field(t, res.Streams[0], metadata.FieldCodecName))
	require.Len(t, res.Scrapers, 2)
	assert.Equal(t, "MpegMediainfo", res.Scrapers[0].Scraper)
	assert.Equal(t, "FFMpegWellformed", res.Scrapers[1].Scraper)
	assert.Len(t, exec.CallsTo("mediainfo"), 1)
	assert.Len(t, exec.CallsTo("ffmpeg"), 1)
}

func TestServiceMetadataOnly(t *testing.T) {
	exec := scrapertest.NewExecutor().On("mediainfo", scrapertest.Reply{Stdout: mpegVideoJSON})
	svc, err := New(testConfig(t), WithExecutor(exec))
	require.NoError(t, err)

	path := writeFile(t, "movie.mpg", []byte{0x00, 0x00, 0x01, 0xB3})
	res, err := svc.Scrape(context.Background(), path, "video/mpeg", WithFullValidation(false))
	require.NoError(t, err)

	assert.Equal(t, metadata.Unknown, res.WellFormed)
	assert.Len(t, exec.CallsTo("mediainfo"), 1)
	assert.Empty(t, exec.CallsTo("ffmpeg"))
	require.Len(t, res.Scrapers, 1)
	assert.Equal(t, "MpegMediainfo", res.Scrapers[0].Scraper)

	// Every DPX descriptor only checks well-formedness.
	dpx := writeFile(t, "frame.dpx", []byte("SDPX"))
	res, err = svc.Scrape(context.Background(), dpx, "image/x-dpx",
		WithVersion("2.0"), WithFullValidation(false))
	require.NoError(t, err)
	assert.Equal(t, metadata.Unknown, res.WellFormed)
	assert.Empty(t, exec.CallsTo("dpxv"))
	assert.Error(t, Check(res))
}

func TestServiceDetectsMimetype(t *testing.T) {
	exec := scrapertest.NewExecutor().On("xmllint", scrapertest.Reply{})
	svc, err := New(testConfig(t), WithExecutor(exec))
	require.NoError(t, err)

	path := writeFile(t, "doc.xml", []byte(`<?xml version="1.0" encoding="UTF-8"?><root/>`))
	res, err := svc.Scrape(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, "text/xml", res.Mimetype)
	assert.Equal(t, "1.0", res.Version)
	assert.Equal(t, metadata.WellFormed, res.WellFormed)
	assert.Equal(t, [][]string{{"xmllint", "--noout", path}}, exec.CallsTo("xmllint"))
	assert.Zero(t, len(exec.CallsTo("xsltproc")))
}

func TestServiceUnsupportedFormat(t *testing.T) {
	svc, err := New(testConfig(t), WithExecutor(scrapertest.NewExecutor()))
	require.NoError(t, err)

	path := writeFile(t, "data.bin", []byte("??"))
	res, err := svc.Scrape(context.Background(), path, "application/x-unknown")
	require.NoError(t, err)

	assert.Equal(t, metadata.NotWellFormed, res.WellFormed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, scraper.UnsupportedMessage, res.Errors[0].Message)

	err = Check(res)
	assert.True(t, IsUnsupportedFormat(err))
}

func TestServiceRequestErrors(t *testing.T) {
	svc, err := New(testConfig(t), WithExecutor(scrapertest.NewExecutor()))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Scrape(ctx, "", "video/mpeg")
	assert.True(t, IsEmptyFilename(err))

	_, err = svc.Scrape(ctx, filepath.Join(t.TempDir(), "missing.mpg"), "video/mpeg")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.True(t, os.IsNotExist(reqErr.Err))

	_, err = svc.Scrape(ctx, t.TempDir(), "video/mpeg")
	assert.ErrorIs(t, err, ErrNotRegularFile)

	path := writeFile(t, "a.png", []byte("x"))
	_, err = svc.Scrape(ctx, path, "image/png", WithChecksums("whirlpool"))
	assert.ErrorIs(t, err, ErrUnsupportedChecksum)
}

func TestServiceChecksums(t *testing.T) {
	exec := scrapertest.NewExecutor().On("pngcheck", scrapertest.Reply{})
	svc, err := New(testConfig(t), WithExecutor(exec))
	require.NoError(t, err)

	path := writeFile(t, "a.png", []byte("hello"))
	res, err := svc.Scrape(context.Background(), path, "image/png",
		WithChecksums(ChecksumMD5, ChecksumSHA256))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"md5":    "5d41402abc4b2a76b9719d911017c592",
		"sha256": "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
	}, res.Checksums)
}

func TestServiceCacheDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheEnabled = false

	var seen scraper.Params
	probe := &scraper.Descriptor{
		Name:      "Probe",
		Supported: map[string][]string{"text/plain": nil},
		Strategy: scraper.StrategyFunc(func(ctx context.Context, s *scraper.Session) error {
			seen = s.Request.Params
			return nil
		}),
	}
	svc, err := New(cfg, WithExecutor(scrapertest.NewExecutor()), WithRegistry(scraper.NewRegistry(probe)))
	require.NoError(t, err)

	path := writeFile(t, "a.txt", []byte("text"))
	_, err = svc.Scrape(context.Background(), path, "text/plain")
	require.NoError(t, err)
	assert.False(t, seen.Bool(scraper.ParamCache, true))

	_, err = svc.Scrape(context.Background(), path, "text/plain", WithCache(true))
	require.NoError(t, err)
	assert.True(t, seen.Bool(scraper.ParamCache, false))
}

func TestNewBoundsEachToolInvocation(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &scraper.ExecExecutor{}, s.exec)

	cfg.ToolTimeoutSeconds = 30
	exec := scrapertest.NewExecutor()
	s, err = New(cfg, WithExecutor(exec))
	require.NoError(t, err)
	bounded, ok := s.exec.(*scraper.TimeoutExecutor)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, bounded.Timeout)
	assert.Same(t, exec, bounded.Executor)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.MaxParallelTools = -1
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.BatchRatePerSecond = -5
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestCheckNoContribution(t *testing.T) {
	res := &merge.FileResult{
		Filename: "f",
		Errors:   []merge.Finding{{Message: merge.NoContributionMessage}},
	}
	assert.ErrorIs(t, Check(res), ErrNoScraperContributed)
	assert.NoError(t, Check(&merge.FileResult{Filename: "f"}))
}

func TestCalculateChecksumsSinglePass(t *testing.T) {
	path := writeFile(t, "f", []byte("hello"))
	sums, err := FileChecksums(path, []ChecksumAlgorithm{ChecksumCRC32, ChecksumCRC32, ChecksumXXHash})
	require.NoError(t, err)
	assert.Len(t, sums, 2)
	assert.Equal(t, "3610a686", sums["crc32"])

	_, err = CalculateChecksums(nil, nil)
	assert.Error(t, err)
}
