package metadata

import (
	"math"
	"strconv"
	"strings"
)

// StripZeros removes trailing zeros after the decimal point, and the point
// itself when nothing remains after it. Strings without a point are returned
// unchanged.
func StripZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatFloat renders f with the shortest exact representation.
func FormatFloat(f float64) string {
	return StripZeros(strconv.FormatFloat(f, 'f', -1, 64))
}

// FormatBitRate converts a bit rate in bit/s to Mbit/s for video streams and
// kbit/s for every other stream type.
func FormatBitRate(bps float64, streamType string) string {
	if streamType == StreamVideo {
		return FormatFloat(bps / 1e6)
	}
	return FormatFloat(bps / 1e3)
}

// FormatSampleRate converts a sample rate in Hz to kHz.
func FormatSampleRate(hz float64) string {
	return FormatFloat(hz / 1e3)
}

// ISO8601Duration renders a duration given in milliseconds, e.g. 860 as
// "PT0.86S" and 3723000 as "PT1H2M3S". Seconds keep at most two decimals.
func ISO8601Duration(ms float64) string {
	// Round once in centiseconds so a carry reaches minutes and hours.
	cs := math.Round(ms / 10)
	hours := math.Floor(cs / 360000)
	minutes := math.Floor(math.Mod(cs, 360000) / 6000)
	seconds := math.Mod(cs, 6000) / 100

	var b strings.Builder
	b.WriteString("PT")
	if hours > 0 {
		b.WriteString(strconv.FormatFloat(hours, 'f', 0, 64))
		b.WriteString("H")
	}
	if minutes > 0 {
		b.WriteString(strconv.FormatFloat(minutes, 'f', 0, 64))
		b.WriteString("M")
	}
	if secs := StripZeros(strconv.FormatFloat(seconds, 'f', 2, 64)); secs != "0" {
		b.WriteString(secs)
		b.WriteString("S")
	}
	if b.Len() == 2 {
		return "PT0S"
	}
	return b.String()
}

// ParseNumber parses a decimal number, tolerating surrounding spaces.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
