package avstream

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"

	"github.com/gobeaver/filescraper/metadata"
)

// Track type labels as reported by mediainfo.
const (
	TypeGeneral = "General"
	TypeVideo   = "Video"
	TypeAudio   = "Audio"
	TypeText    = "Text"
	TypeMenu    = "Menu"
	TypeOther   = "Other"
	TypeImage   = "Image"
)

// Track is one raw track of a probe report.
type Track struct {
	// Type is the track type label, e.g. "General" or "Video".
	Type string

	// ID is the track identifier; empty when the probe reported none.
	ID string

	// StreamOrder is the probe's ordering hint, if any.
	StreamOrder *int

	// Fields holds every scalar attribute of the track by mediainfo key.
	Fields map[string]string
}

// IsGeneral reports whether the track is the synthetic general track.
func (t *Track) IsGeneral() bool {
	return strings.EqualFold(t.Type, TypeGeneral)
}

// Get returns an attribute, trimmed; "" when absent.
func (t *Track) Get(key string) string {
	if t == nil {
		return ""
	}
	return strings.TrimSpace(t.Fields[key])
}

// Number returns an attribute parsed as a number.
func (t *Track) Number(key string) (float64, bool) {
	return metadata.ParseNumber(t.Get(key))
}

// DurationMS returns the track duration in milliseconds. mediainfo's JSON
// output reports durations in seconds.
func (t *Track) DurationMS() (float64, bool) {
	s, ok := t.Number("Duration")
	if !ok {
		return 0, false
	}
	return s * 1000, true
}

type mediainfoReport struct {
	Media *struct {
		Track []map[string]any `json:"track"`
	} `json:"media"`
}

// ParseMediainfoJSON parses the output of `mediainfo --Output=JSON`.
func ParseMediainfoJSON(data []byte) ([]*Track, error) {
	var report mediainfoReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(err, "parse mediainfo output")
	}
	if report.Media == nil {
		return nil, errors.New("mediainfo output has no media section")
	}

	tracks := make([]*Track, 0, len(report.Media.Track))
	for _, raw := range report.Media.Track {
		t := &Track{Fields: make(map[string]string, len(raw))}
		for k, v := range raw {
			// Nested objects such as "extra" carry no canonical fields.
			switch v.(type) {
			case map[string]any, []any:
				continue
			}
			t.Fields[k] = cast.ToString(v)
		}
		t.Type = t.Fields["@type"]
		t.ID = strings.TrimSpace(t.Fields["ID"])
		if order, err := strconv.Atoi(strings.TrimSpace(t.Fields["StreamOrder"])); err == nil && order >= 0 {
			t.StreamOrder = &order
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}
