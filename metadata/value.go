package metadata

import "encoding/json"

// Placeholders used when a stream record is rendered.
const (
	// Unav marks a value that could not be determined.
	Unav = "(:unav)"
	// Unap marks a value that is structurally inapplicable for the stream.
	Unap = "(:unap)"
)

type valueState uint8

const (
	stateUnresolved valueState = iota
	stateConcrete
	stateNotApplicable
)

// Value is a single field value reported by one scraper.
//
// A Value is exactly one of: a concrete string, NotApplicable (the field has
// no meaning for the stream type) or Unresolved (this scraper defers the
// field to others). The zero Value is Unresolved.
type Value struct {
	s     string
	state valueState
}

var (
	// Unresolved is the value of a field the scraper cannot determine.
	Unresolved = Value{}
	// NotApplicable is the value of a field outside its stream type.
	NotApplicable = Value{state: stateNotApplicable}
)

// Of returns a concrete value.
func Of(s string) Value {
	return Value{s: s, state: stateConcrete}
}

// OfOr returns a concrete value for s, or Unresolved when s is empty.
func OfOr(s string) Value {
	if s == "" {
		return Unresolved
	}
	return Of(s)
}

// IsConcrete reports whether v holds a concrete value.
func (v Value) IsConcrete() bool { return v.state == stateConcrete }

// IsNotApplicable reports whether v is NotApplicable.
func (v Value) IsNotApplicable() bool { return v.state == stateNotApplicable }

// IsUnresolved reports whether v is Unresolved.
func (v Value) IsUnresolved() bool { return v.state == stateUnresolved }

// Get returns the concrete value and whether there was one.
func (v Value) Get() (string, bool) {
	return v.s, v.state == stateConcrete
}

// String returns the concrete value, or a placeholder for the other states.
func (v Value) String() string {
	switch v.state {
	case stateConcrete:
		return v.s
	case stateNotApplicable:
		return Unap
	default:
		return Unav
	}
}

// MarshalJSON encodes concrete values as strings and everything else as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.state != stateConcrete {
		return []byte("null"), nil
	}
	return json.Marshal(v.s)
}
