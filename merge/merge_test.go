package merge

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/filescraper/avstream"
	"github.com/gobeaver/filescraper/metadata"
	"github.com/gobeaver/filescraper/scraper"
)

func stream(pairs ...any) *metadata.Stream {
	s := metadata.NewStream()
	for i := 0; i < len(pairs); i += 2 {
		s.Set(pairs[i].(string), pairs[i+1].(metadata.Value))
	}
	return s
}

func result(name string, wf metadata.Verdict, streams ...*metadata.Stream) *scraper.Result {
	return &scraper.Result{
		Scraper:        name,
		State:          scraper.StateSuccess,
		FullValidation: true,
		WellFormed:     wf,
		Streams:        streams,
	}
}

func concrete(t *testing.T, s *metadata.Stream, field string) string {
	t.Helper()
	v, ok := s.Get(field).Get()
	require.True(t, ok, field)
	return v
}

func TestUnresolvedYieldsToConcrete(t *testing.T) {
	a := result("A", metadata.WellFormed, stream(metadata.FieldColor, metadata.Unresolved))
	b := result("B", metadata.WellFormed, stream(metadata.FieldColor, metadata.Of("Color")))

	out := Merge("f", true, []*scraper.Result{a, b})
	require.Len(t, out.Streams, 1)
	assert.Equal(t, "Color", concrete(t, out.Streams[0], metadata.FieldColor))
	assert.Empty(t, out.Conflicts)
}

func TestOwnerNotApplicableBeatsConcrete(t *testing.T) {
	nonOwner := result("Magic", metadata.WellFormed, stream(
		metadata.FieldStreamType, metadata.Of("audio"),
		metadata.FieldWidth, metadata.Of("640"),
	))
	owner := result("Mediainfo", metadata.WellFormed, stream(
		metadata.FieldStreamType, metadata.Of("audio"),
		metadata.FieldWidth, metadata.NotApplicable,
	))
	owner.Owns = avstream.OwnedStreamTypes

	out := Merge("f", true, []*scraper.Result{nonOwner, owner})
	assert.True(t, out.Streams[0].Get(metadata.FieldWidth).IsNotApplicable())
	_, rendered := out.Streams[0].Render().Get(metadata.FieldWidth)
	assert.False(t, rendered)
}

func TestNonOwnerNotApplicableYieldsToConcrete(t *testing.T) {
	a := result("A", metadata.WellFormed, stream(metadata.FieldCharset, metadata.NotApplicable))
	b := result("B", metadata.WellFormed, stream(metadata.FieldCharset, metadata.Of("UTF-8")))

	out := Merge("f", true, []*scraper.Result{a, b})
	assert.Equal(t, "UTF-8", concrete(t, out.Streams[0], metadata.FieldCharset))
}

func TestConflictKeepsPriorityValue(t *testing.T) {
	a := result("A", metadata.WellFormed, stream(metadata.FieldMimetype, metadata.Of("video/mp4")))
	b := result("B", metadata.WellFormed, stream(metadata.FieldMimetype, metadata.Of("video/quicktime")))

	out := Merge("f", true, []*scraper.Result{a, b})
	assert.Equal(t, "video/mp4", out.Mimetype)
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, Conflict{Index: 0, Field: metadata.FieldMimetype, Kept: "video/mp4", KeptBy: "A", Rejected: "video/quicktime", Scraper: "B"}, out.Conflicts[0])
	assert.Equal(t, metadata.WellFormed, out.WellFormed, "conflicts do not change the verdict")
}

func TestIncompleteMetadataWarning(t *testing.T) {
	a := result("A", metadata.WellFormed, stream(
		metadata.FieldMimetype, metadata.Unresolved,
		metadata.FieldWidth, metadata.Unresolved,
	))
	out := Merge("f", true, []*scraper.Result{a})

	var incomplete int
	for _, w := range out.Warnings {
		if w.Kind == scraper.KindIncompleteMetadata {
			incomplete++
		}
	}
	assert.Equal(t, 2, incomplete)
	rendered := out.Streams[0].Render()
	width, _ := rendered.Get(metadata.FieldWidth)
	assert.Equal(t, "0", width)
	mt, _ := rendered.Get(metadata.FieldMimetype)
	assert.Equal(t, metadata.Unav, mt)
}

func TestStreamsAlignByIndex(t *testing.T) {
	a := result("A", metadata.WellFormed,
		stream(metadata.FieldStreamType, metadata.Of("videocontainer")),
		stream(metadata.FieldStreamType, metadata.Of("video")),
		stream(metadata.FieldStreamType, metadata.Of("audio")),
	)
	b := result("B", metadata.WellFormed, stream(metadata.FieldStreamType, metadata.Unresolved))

	out := Merge("f", true, []*scraper.Result{a, b})
	require.Len(t, out.Streams, 3)
	for i, want := range []string{"videocontainer", "video", "audio"} {
		assert.Equal(t, want, concrete(t, out.Streams[i], metadata.FieldStreamType))
		assert.Equal(t, []string{"0", "1", "2"}[i], concrete(t, out.Streams[i], metadata.FieldIndex))
	}
}

func TestVerdict(t *testing.T) {
	ok := result("A", metadata.WellFormed)
	bad := result("B", metadata.NotWellFormed)
	withErrors := result("C", metadata.WellFormed)
	withErrors.Errors = []scraper.Issue{{Kind: scraper.KindInconsistentIdentification, Message: "x"}}
	fatal := &scraper.Result{Scraper: "D", State: scraper.StateFatal, Err: errors.New("killed")}

	tests := []struct {
		name    string
		full    bool
		results []*scraper.Result
		want    metadata.Verdict
	}{
		{"all valid", true, []*scraper.Result{ok, ok}, metadata.WellFormed},
		{"one invalid", true, []*scraper.Result{ok, bad}, metadata.NotWellFormed},
		{"errors invalidate", true, []*scraper.Result{ok, withErrors}, metadata.NotWellFormed},
		{"fatal excluded", true, []*scraper.Result{ok, fatal}, metadata.WellFormed},
		{"nothing contributed", true, []*scraper.Result{fatal}, metadata.Unknown},
		{"metadata only", false, []*scraper.Result{ok, bad}, metadata.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge("f", tt.full, tt.results).WellFormed)
		})
	}
}

func TestFatalResultIsReportedButExcluded(t *testing.T) {
	fatal := &scraper.Result{
		Scraper: "FFMpegWellformed",
		State:   scraper.StateFatal,
		Err:     errors.New("ffmpeg killed"),
		Streams: []*metadata.Stream{stream(metadata.FieldCodecName, metadata.Of("bogus"))},
	}
	out := Merge("f", true, []*scraper.Result{fatal})

	assert.Empty(t, out.Streams)
	require.Len(t, out.Scrapers, 1)
	assert.Equal(t, scraper.StateFatal, out.Scrapers[0].State)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0].Message, "ffmpeg killed")
	require.Len(t, out.Errors, 1)
	assert.Equal(t, NoContributionMessage, out.Errors[0].Message)
}

func TestIdentifyFallsBackToScraperIdentification(t *testing.T) {
	a := result("A", metadata.WellFormed, stream(
		metadata.FieldMimetype, metadata.Unresolved,
		metadata.FieldVersion, metadata.Unresolved,
	))
	a.Mimetype = "image/png"
	a.Version = "1.2"

	out := Merge("f", true, []*scraper.Result{a})
	assert.Equal(t, "image/png", out.Mimetype)
	assert.Equal(t, "1.2", out.Version)
}
