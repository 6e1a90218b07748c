package avstream

import (
	"strings"

	"github.com/gobeaver/filescraper/metadata"
)

// GeneralTrack returns the synthetic general track, or nil.
func GeneralTrack(tracks []*Track) *Track {
	for _, t := range tracks {
		if t.IsGeneral() && t.ID == "" {
			return t
		}
	}
	for _, t := range tracks {
		if t.IsGeneral() {
			return t
		}
	}
	return nil
}

// IsContainer reports whether the tracks describe a multi-stream container:
// a general track without identifier alongside individually identified
// media tracks. A file whose media tracks carry no identifiers is a single
// elementary stream.
func IsContainer(tracks []*Track) bool {
	general := GeneralTrack(tracks)
	if general == nil || general.ID != "" {
		return false
	}
	for _, t := range tracks {
		if t != general && t.ID != "" {
			return true
		}
	}
	return false
}

// Reorder returns the tracks in canonical order: the general track first,
// then each hinted track at its hint (offset by one when a general track
// exists), with unhinted tracks filling the remaining positions in encounter
// order. Hints that are out of range or already taken are ignored.
// Reorder is idempotent.
func Reorder(tracks []*Track) []*Track {
	n := len(tracks)
	out := make([]*Track, n)

	general := GeneralTrack(tracks)
	offset := 0
	if general != nil {
		out[0] = general
		offset = 1
	}

	target := func(t *Track) int {
		if t == general || t.StreamOrder == nil {
			return -1
		}
		if pos := *t.StreamOrder + offset; pos < n {
			return pos
		}
		return -1
	}

	// Tracks already at their target win contested positions, which keeps
	// the result a fixed point.
	placed := make(map[*Track]bool, n)
	for i, t := range tracks {
		if pos := target(t); pos >= 0 && pos == i {
			out[pos] = t
			placed[t] = true
		}
	}

	var unhinted []*Track
	for _, t := range tracks {
		if t == general || placed[t] {
			continue
		}
		if pos := target(t); pos >= 0 && out[pos] == nil {
			out[pos] = t
			continue
		}
		unhinted = append(unhinted, t)
	}

	next := 0
	for i := range out {
		if out[i] == nil {
			out[i] = unhinted[next]
			next++
		}
	}
	return out
}

// StreamType returns the classified type of a track: the general track is a
// videocontainer, every other track its lower-cased type label.
func StreamType(t *Track) string {
	if t.IsGeneral() {
		return metadata.StreamVideoContainer
	}
	return strings.ToLower(t.Type)
}

// Normalize reshapes raw tracks into the canonical stream sequence and
// resolves every field of profile for each stream. declared is the
// predicted mimetype of the file.
func Normalize(tracks []*Track, profile *Profile, declared string) []*metadata.Stream {
	ordered := Reorder(tracks)
	container := IsContainer(tracks)
	general := GeneralTrack(tracks)

	var emitted []*Track
	for _, t := range ordered {
		if t.IsGeneral() && !container {
			continue
		}
		emitted = append(emitted, t)
	}

	streams := make([]*metadata.Stream, 0, len(emitted))
	for i, t := range emitted {
		sc := &StreamContext{
			Track:      t,
			General:    general,
			StreamType: StreamType(t),
			Index:      i,
			Container:  container,
			Declared:   declared,
		}
		streams = append(streams, profile.Resolve(sc))
	}
	return streams
}
