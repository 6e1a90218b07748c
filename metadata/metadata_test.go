package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueStates(t *testing.T) {
	assert.True(t, Unresolved.IsUnresolved())
	assert.True(t, Value{}.IsUnresolved())
	assert.True(t, NotApplicable.IsNotApplicable())

	v := Of("Color")
	s, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, "Color", s)
	assert.True(t, Of("").IsConcrete())
	assert.True(t, OfOr("").IsUnresolved())

	assert.Equal(t, Unav, Unresolved.String())
	assert.Equal(t, Unap, NotApplicable.String())
}

func TestStripZeros(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.000", "1"},
		{"705.600", "705.6"},
		{"30", "30"},
		{"100", "100"},
		{"0.50", "0.5"},
		{"1.778", "1.778"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripZeros(tt.in), "StripZeros(%q)", tt.in)
	}
}

func TestFormatBitRate(t *testing.T) {
	assert.Equal(t, "705.6", FormatBitRate(705600, StreamAudio))
	assert.Equal(t, "2.071061", FormatBitRate(2071061, StreamVideo))
	assert.Equal(t, "24.4416", FormatBitRate(24441600, StreamVideo))
	assert.Equal(t, "128", FormatBitRate(128000, StreamAudio))
}

func TestFormatSampleRate(t *testing.T) {
	assert.Equal(t, "44.1", FormatSampleRate(44100))
	assert.Equal(t, "48", FormatSampleRate(48000))
}

func TestISO8601Duration(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{860, "PT0.86S"},
		{1000, "PT1S"},
		{80, "PT0.08S"},
		{3723000, "PT1H2M3S"},
		{60000, "PT1M"},
		{0, "PT0S"},
		{59999, "PT1M"},
		{3599999, "PT1H"},
		{3723456, "PT1H2M3.46S"},
		{4, "PT0S"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ISO8601Duration(tt.ms), "ISO8601Duration(%v)", tt.ms)
	}
}

func TestStreamRender(t *testing.T) {
	s := NewStream()
	s.Set(FieldIndex, Of("0"))
	s.Set(FieldStreamType, Of(StreamAudio))
	s.Set(FieldWidth, NotApplicable)
	s.Set(FieldSamplingFrequency, Unresolved)
	s.Set(FieldNumChannels, Unresolved)
	s.Set(FieldSignalFormat, Of(Unap))

	out := s.Render()
	_, hasWidth := out.Get(FieldWidth)
	assert.False(t, hasWidth, "NotApplicable fields are not rendered")

	freq, _ := out.Get(FieldSamplingFrequency)
	assert.Equal(t, "0", freq)
	ch, _ := out.Get(FieldNumChannels)
	assert.Equal(t, Unav, ch)
	sf, _ := out.Get(FieldSignalFormat)
	assert.Equal(t, Unap, sf)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":"0","stream_type":"audio","sampling_frequency":"0","num_channels":"(:unav)","signal_format":"(:unap)"}`, string(data))
}

func TestStreamKeepsInsertionOrder(t *testing.T) {
	s := NewStream()
	s.Set(FieldMimetype, Of("video/mpeg"))
	s.Set(FieldVersion, Of("1"))
	s.Set(FieldStreamType, Of(StreamVideo))
	s.Set(FieldMimetype, Of("video/mp4"))

	assert.Equal(t, []string{FieldMimetype, FieldVersion, FieldStreamType}, s.Fields())
	assert.Equal(t, StreamVideo, s.Type())

	c := s.Clone()
	c.Set(FieldVersion, Of("2"))
	v, _ := s.Get(FieldVersion).Get()
	assert.Equal(t, "1", v)
}

func TestVerdict(t *testing.T) {
	wf, known := Unknown.Bool()
	assert.False(t, known)
	assert.False(t, wf)

	wf, known = VerdictOf(true).Bool()
	assert.True(t, known)
	assert.True(t, wf)

	data, err := json.Marshal(map[string]Verdict{"a": Unknown, "b": NotWellFormed})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":false}`, string(data))
}
