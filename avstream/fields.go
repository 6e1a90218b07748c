package avstream

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gobeaver/filescraper/metadata"
)

// StreamContext is what a field resolver sees for one stream.
type StreamContext struct {
	// Track is the raw track of this stream.
	Track *Track
	// General is the file's general track, which may be nil.
	General *Track
	// StreamType is the classified stream type.
	StreamType string
	// Index is the stream's position in the canonical sequence.
	Index int
	// Container reports whether the file is a multi-stream container.
	Container bool
	// Declared is the predicted mimetype of the file.
	Declared string
}

// Field resolves one output field.
type Field struct {
	Name string

	// AppliesTo lists the stream types the field is meaningful for; nil
	// means every stream type.
	AppliesTo []string

	Resolve func(sc *StreamContext) metadata.Value
}

// Value resolves the field for sc, returning NotApplicable outside the
// field's stream types.
func (f Field) Value(sc *StreamContext) metadata.Value {
	if f.AppliesTo != nil && !containsType(f.AppliesTo, sc.StreamType) {
		return metadata.NotApplicable
	}
	return f.Resolve(sc)
}

// Profile is an ordered field resolver table.
type Profile struct {
	Name   string
	Fields []Field
}

// Resolve builds the stream record for sc.
func (p *Profile) Resolve(sc *StreamContext) *metadata.Stream {
	s := metadata.NewStream()
	for _, f := range p.Fields {
		s.Set(f.Name, f.Value(sc))
	}
	return s
}

// With returns a copy of p with the given fields replacing same-named ones.
func (p *Profile) With(name string, overrides ...Field) *Profile {
	byName := make(map[string]Field, len(overrides))
	for _, f := range overrides {
		byName[f.Name] = f
	}
	fields := make([]Field, len(p.Fields))
	for i, f := range p.Fields {
		if o, ok := byName[f.Name]; ok {
			f = o
		}
		fields[i] = f
	}
	return &Profile{Name: name, Fields: fields}
}

// Field returns the resolver for name.
func (p *Profile) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var (
	videoOnly      = []string{metadata.StreamVideo}
	audioOnly      = []string{metadata.StreamAudio}
	audioVideo     = []string{metadata.StreamVideo, metadata.StreamAudio}
	codecBearing   = []string{metadata.StreamVideo, metadata.StreamAudio, metadata.StreamVideoContainer}
	appVersionExpr = regexp.MustCompile(`([\d.]+)$`)
)

// OwnedStreamTypes are the stream types whose field list the mediainfo
// profiles define.
var OwnedStreamTypes = []string{
	metadata.StreamVideoContainer,
	metadata.StreamVideo,
	metadata.StreamAudio,
	"text",
	"menu",
	"other",
}

// AVMimetypes maps codec names to mimetypes for generic audio/video files.
var AVMimetypes = map[string]string{
	"DV":            "video/dv",
	"PCM":           "audio/x-wav",
	"AAC":           "audio/mp4",
	"AVC":           "video/mp4",
	"MPEG-4":        "video/mp4",
	"MPEG-4 Visual": "video/mp4",
	"MPEG Video":    "video/mpeg",
	"MPEG Audio":    "audio/mpeg",
	"FLAC":          "audio/flac",
	"FFV1":          "video/x-ffv",
	"Matroska":      "video/x-matroska",
}

// MPEGMimetypes maps codec names to mimetypes for MPEG family files.
var MPEGMimetypes = map[string]string{
	"AAC":        "audio/mp4",
	"AVC":        "video/mp4",
	"MPEG-4":     "video/mp4",
	"MPEG Video": "video/mpeg",
	"MPEG Audio": "audio/mpeg",
}

// mimetypeField reports the declared mimetype for the first stream and a
// codec-derived mimetype for the others. Streams of an unmapped codec, such
// as timecode or menu tracks, fall back to the declared mimetype.
func mimetypeField(codecs map[string]string) Field {
	return Field{
		Name: metadata.FieldMimetype,
		Resolve: func(sc *StreamContext) metadata.Value {
			if sc.Index == 0 && sc.Declared != "" {
				return metadata.Of(sc.Declared)
			}
			if m, ok := codecs[sc.Track.Get("Format")]; ok {
				return metadata.Of(m)
			}
			return metadata.OfOr(sc.Declared)
		},
	}
}

func stringField(name string, applies []string, key string) Field {
	return Field{
		Name:      name,
		AppliesTo: applies,
		Resolve: func(sc *StreamContext) metadata.Value {
			return metadata.OfOr(sc.Track.Get(key))
		},
	}
}

func numberField(name string, applies []string, key string) Field {
	return Field{
		Name:      name,
		AppliesTo: applies,
		Resolve: func(sc *StreamContext) metadata.Value {
			if f, ok := sc.Track.Number(key); ok {
				return metadata.Of(metadata.FormatFloat(f))
			}
			return metadata.Unresolved
		},
	}
}

// BaseProfile is the field table shared by every mediainfo scraper.
var BaseProfile = &Profile{
	Name: "mediainfo",
	Fields: []Field{
		mimetypeField(AVMimetypes),
		{
			Name: metadata.FieldVersion,
			Resolve: func(sc *StreamContext) metadata.Value {
				v := strings.TrimSpace(strings.TrimPrefix(sc.Track.Get("Format_Version"), "Version"))
				return metadata.OfOr(v)
			},
		},
		{
			Name: metadata.FieldStreamType,
			Resolve: func(sc *StreamContext) metadata.Value {
				return metadata.Of(sc.StreamType)
			},
		},
		{
			Name: metadata.FieldIndex,
			Resolve: func(sc *StreamContext) metadata.Value {
				return metadata.Of(strconv.Itoa(sc.Index))
			},
		},
		{
			Name:      metadata.FieldColor,
			AppliesTo: videoOnly,
			Resolve: func(sc *StreamContext) metadata.Value {
				switch sc.Track.Get("ColorSpace") {
				case "RGB", "YUV":
					return metadata.Of("Color")
				case "Y":
					return metadata.Of("Grayscale")
				}
				return metadata.Unresolved
			},
		},
		stringField(metadata.FieldSignalFormat, videoOnly, "Standard"),
		numberField(metadata.FieldWidth, videoOnly, "Width"),
		numberField(metadata.FieldHeight, videoOnly, "Height"),
		numberField(metadata.FieldPAR, videoOnly, "PixelAspectRatio"),
		numberField(metadata.FieldDAR, videoOnly, "DisplayAspectRatio"),
		{
			Name:      metadata.FieldDataRate,
			AppliesTo: audioVideo,
			Resolve: func(sc *StreamContext) metadata.Value {
				if bps, ok := sc.Track.Number("BitRate"); ok {
					return metadata.Of(metadata.FormatBitRate(bps, sc.StreamType))
				}
				return metadata.Unresolved
			},
		},
		numberField(metadata.FieldFrameRate, videoOnly, "FrameRate"),
		stringField(metadata.FieldSampling, videoOnly, "ChromaSubsampling"),
		{
			Name:      metadata.FieldSound,
			AppliesTo: videoOnly,
			Resolve: func(sc *StreamContext) metadata.Value {
				if n, ok := sc.General.Number("AudioCount"); ok && n > 0 {
					return metadata.Of("Yes")
				}
				return metadata.Of("No")
			},
		},
		{
			Name:      metadata.FieldCodecQuality,
			AppliesTo: audioVideo,
			Resolve: func(sc *StreamContext) metadata.Value {
				return metadata.OfOr(strings.ToLower(sc.Track.Get("Compression_Mode")))
			},
		},
		{
			Name:      metadata.FieldDataRateMode,
			AppliesTo: audioVideo,
			Resolve: func(sc *StreamContext) metadata.Value {
				switch mode := sc.Track.Get("BitRate_Mode"); {
				case mode == "CBR":
					return metadata.Of("Fixed")
				case mode != "":
					return metadata.Of("Variable")
				}
				return metadata.Unresolved
			},
		},
		stringField(metadata.FieldAudioDataEncoding, audioOnly, "Format"),
		{
			Name:      metadata.FieldSamplingFrequency,
			AppliesTo: audioOnly,
			Resolve: func(sc *StreamContext) metadata.Value {
				if hz, ok := sc.Track.Number("SamplingRate"); ok {
					return metadata.Of(metadata.FormatSampleRate(hz))
				}
				return metadata.Unresolved
			},
		},
		stringField(metadata.FieldNumChannels, audioOnly, "Channels"),
		{
			Name:      metadata.FieldCodecCreatorApp,
			AppliesTo: codecBearing,
			Resolve: func(sc *StreamContext) metadata.Value {
				return metadata.OfOr(sc.General.Get("Encoded_Application"))
			},
		},
		{
			Name:      metadata.FieldCodecCreatorAppVersion,
			AppliesTo: codecBearing,
			Resolve: func(sc *StreamContext) metadata.Value {
				if m := appVersionExpr.FindStringSubmatch(sc.General.Get("Encoded_Application")); m != nil {
					return metadata.Of(m[1])
				}
				return metadata.Unresolved
			},
		},
		stringField(metadata.FieldCodecName, codecBearing, "Format"),
		{
			Name:      metadata.FieldDuration,
			AppliesTo: audioVideo,
			Resolve: func(sc *StreamContext) metadata.Value {
				if ms, ok := sc.Track.DurationMS(); ok {
					return metadata.Of(metadata.ISO8601Duration(ms))
				}
				return metadata.Unresolved
			},
		},
		numberField(metadata.FieldBitsPerSample, audioVideo, "BitDepth"),
	},
}

// MPEGProfile specializes BaseProfile for the MPEG family: no broadcast
// signal format, lossy coding and variable rate unless stated, and single
// character versions.
var MPEGProfile = BaseProfile.With("mediainfo-mpeg",
	mimetypeField(MPEGMimetypes),
	Field{
		Name: metadata.FieldVersion,
		Resolve: func(sc *StreamContext) metadata.Value {
			v := sc.Track.Get("Format_Version")
			if v == "" {
				return metadata.Unresolved
			}
			return metadata.Of(v[len(v)-1:])
		},
	},
	Field{
		Name:      metadata.FieldSignalFormat,
		AppliesTo: videoOnly,
		Resolve: func(*StreamContext) metadata.Value {
			return metadata.Of(metadata.Unap)
		},
	},
	Field{
		Name:      metadata.FieldCodecQuality,
		AppliesTo: audioVideo,
		Resolve: func(sc *StreamContext) metadata.Value {
			if mode := sc.Track.Get("Compression_Mode"); mode != "" {
				return metadata.Of(strings.ToLower(mode))
			}
			return metadata.Of("lossy")
		},
	},
	Field{
		Name:      metadata.FieldDataRateMode,
		AppliesTo: audioVideo,
		Resolve: func(sc *StreamContext) metadata.Value {
			if sc.Track.Get("BitRate_Mode") == "CBR" {
				return metadata.Of("Fixed")
			}
			return metadata.Of("Variable")
		},
	},
)

func containsType(types []string, t string) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}
