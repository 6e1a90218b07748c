package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/filescraper/batch"
	"github.com/gobeaver/filescraper/merge"
	"github.com/gobeaver/filescraper/metadata"
)

func flagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addScrapeFlags(cmd)
	addSelectorFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestSelectorFromFlags(t *testing.T) {
	cmd := flagCommand(t, "--glob", "*.png", "--glob", "*.dpx", "--depth", "1")
	sel, err := selectorFromFlags(cmd)
	require.NoError(t, err)

	assert.True(t, sel.Match(&batch.Entry{Name: "a.png", Rel: "a.png"}))
	assert.True(t, sel.Match(&batch.Entry{Name: "b.dpx", Rel: "b.dpx"}))
	assert.False(t, sel.Match(&batch.Entry{Name: "c.mp4", Rel: "c.mp4"}))
	assert.False(t, sel.Match(&batch.Entry{Name: ".d.png", Rel: ".d.png"}))
	assert.False(t, sel.Match(&batch.Entry{Name: "e.png", Rel: "sub/e.png"}))

	_, err = selectorFromFlags(flagCommand(t, "--glob", "[a-"))
	assert.Error(t, err)

	sel, err = selectorFromFlags(flagCommand(t, "--hidden"))
	require.NoError(t, err)
	assert.True(t, sel.Match(&batch.Entry{Name: ".d.png", Rel: ".d.png"}))
}

func TestScrapeOptionsFromFlags(t *testing.T) {
	assert.Empty(t, scrapeOptions(flagCommand(t)))

	cmd := flagCommand(t, "--version", "1.0", "--no-validation", "--schematron", "r.sch",
		"--verbose-report", "--no-cache", "--extra-hash", "x", "--checksum", "MD5,sha256")
	assert.Len(t, scrapeOptions(cmd), 7)
}

func TestOutputFormat(t *testing.T) {
	f, err := outputFormat(flagCommand(t, "-f", "yaml"))
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = outputFormat(flagCommand(t, "-f", "xml"))
	assert.Error(t, err)
}

func sampleResult(name string) *merge.FileResult {
	s := metadata.NewStream()
	s.Set(metadata.FieldMimetype, metadata.Of("image/png"))
	s.Set(metadata.FieldStreamType, metadata.Of("image"))
	return &merge.FileResult{
		Filename:   name,
		Mimetype:   "image/png",
		Version:    "1.2",
		WellFormed: metadata.WellFormed,
		Streams:    []*metadata.Stream{s},
	}
}

func TestResultWriterJSONLines(t *testing.T) {
	var buf bytes.Buffer
	rw := newResultWriter(&buf, FormatJSON, true)
	require.NoError(t, rw.Write(sampleResult("a.png")))
	require.NoError(t, rw.Write(sampleResult("b.png")))
	require.NoError(t, rw.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"filename":"a.png"`)
	assert.Contains(t, lines[0], `"well_formed":true`)
	assert.Contains(t, lines[1], `"filename":"b.png"`)
}

func TestResultWriterYAMLDocuments(t *testing.T) {
	var buf bytes.Buffer
	rw := newResultWriter(&buf, FormatYAML, true)
	require.NoError(t, rw.Write(sampleResult("a.png")))
	require.NoError(t, rw.Write(sampleResult("b.png")))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "---\n"))
	assert.Contains(t, out, "filename: a.png")
	assert.Contains(t, out, "filename: b.png")
}

func TestResultWriterTableBuffersRows(t *testing.T) {
	var buf bytes.Buffer
	rw := newResultWriter(&buf, FormatTable, true)
	require.NoError(t, rw.Write(sampleResult("a.png")))
	assert.Zero(t, buf.Len())

	require.NoError(t, rw.Flush())
	assert.Contains(t, buf.String(), "a.png")
	assert.Contains(t, buf.String(), "Mimetype")
}
