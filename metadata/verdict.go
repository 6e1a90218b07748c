package metadata

// Verdict is a tri-state well-formedness verdict.
type Verdict uint8

const (
	// Unknown means well-formedness was not checked.
	Unknown Verdict = iota
	// WellFormed means every check passed.
	WellFormed
	// NotWellFormed means at least one check failed.
	NotWellFormed
)

// VerdictOf converts a boolean outcome into a Verdict.
func VerdictOf(ok bool) Verdict {
	if ok {
		return WellFormed
	}
	return NotWellFormed
}

// Bool returns the verdict as a boolean and whether it is known.
func (v Verdict) Bool() (wellFormed bool, known bool) {
	switch v {
	case WellFormed:
		return true, true
	case NotWellFormed:
		return false, true
	default:
		return false, false
	}
}

func (v Verdict) String() string {
	switch v {
	case WellFormed:
		return "true"
	case NotWellFormed:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the verdict as true, false or null.
func (v Verdict) MarshalJSON() ([]byte, error) {
	if v == Unknown {
		return []byte("null"), nil
	}
	return []byte(v.String()), nil
}

// MarshalYAML encodes the verdict as a boolean or null.
func (v Verdict) MarshalYAML() (interface{}, error) {
	b, known := v.Bool()
	if !known {
		return nil, nil
	}
	return b, nil
}
