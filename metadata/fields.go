package metadata

// Field names shared by every scraper.
const (
	FieldMimetype   = "mimetype"
	FieldVersion    = "version"
	FieldStreamType = "stream_type"
	FieldIndex      = "index"
	FieldCharset    = "charset"

	FieldColor                  = "color"
	FieldSignalFormat           = "signal_format"
	FieldWidth                  = "width"
	FieldHeight                 = "height"
	FieldPAR                    = "par"
	FieldDAR                    = "dar"
	FieldDataRate               = "data_rate"
	FieldFrameRate              = "frame_rate"
	FieldSampling               = "sampling"
	FieldSound                  = "sound"
	FieldCodecQuality           = "codec_quality"
	FieldDataRateMode           = "data_rate_mode"
	FieldAudioDataEncoding      = "audio_data_encoding"
	FieldSamplingFrequency      = "sampling_frequency"
	FieldNumChannels            = "num_channels"
	FieldCodecCreatorApp        = "codec_creator_app"
	FieldCodecCreatorAppVersion = "codec_creator_app_version"
	FieldCodecName              = "codec_name"
	FieldDuration               = "duration"
	FieldBitsPerSample          = "bits_per_sample"
)

// Stream types.
const (
	StreamVideoContainer = "videocontainer"
	StreamVideo          = "video"
	StreamAudio          = "audio"
	StreamImage          = "image"
	StreamText           = "text"
	StreamBinary         = "binary"
)

// Kind decides how an unresolved field is rendered.
type Kind uint8

const (
	// KindString fields render unresolved values as Unav.
	KindString Kind = iota
	// KindNumeric fields render unresolved values as "0".
	KindNumeric
)

var numericFields = map[string]bool{
	FieldWidth:             true,
	FieldHeight:            true,
	FieldPAR:               true,
	FieldDataRate:          true,
	FieldFrameRate:         true,
	FieldSamplingFrequency: true,
	FieldBitsPerSample:     true,
}

// KindOf returns the rendering kind of a field.
func KindOf(field string) Kind {
	if numericFields[field] {
		return KindNumeric
	}
	return KindString
}

// Placeholder returns the rendered form of an unresolved value of this kind.
func (k Kind) Placeholder() string {
	if k == KindNumeric {
		return "0"
	}
	return Unav
}
