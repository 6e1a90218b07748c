package metadata

import (
	"encoding/json"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Stream is an ordered record of field values for one stream of a file.
// Field order is insertion order and is preserved when rendered.
type Stream struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewStream returns an empty stream record.
func NewStream() *Stream {
	return &Stream{fields: orderedmap.New[string, Value]()}
}

// Set stores a value for field, keeping the original position of an
// existing field.
func (s *Stream) Set(field string, v Value) {
	s.fields.Set(field, v)
}

// Lookup returns the value for field and whether the field is present.
func (s *Stream) Lookup(field string) (Value, bool) {
	return s.fields.Get(field)
}

// Get returns the value for field. A missing field is Unresolved.
func (s *Stream) Get(field string) Value {
	v, _ := s.fields.Get(field)
	return v
}

// Fields returns the field names in order.
func (s *Stream) Fields() []string {
	names := make([]string, 0, s.fields.Len())
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of fields, including NotApplicable ones.
func (s *Stream) Len() int {
	return s.fields.Len()
}

// Type returns the concrete stream type, or "" when unknown.
func (s *Stream) Type() string {
	t, _ := s.Get(FieldStreamType).Get()
	return t
}

// SetIndex stores the stream index.
func (s *Stream) SetIndex(i int) {
	s.Set(FieldIndex, Of(strconv.Itoa(i)))
}

// Clone returns a copy of the record.
func (s *Stream) Clone() *Stream {
	c := NewStream()
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		c.fields.Set(pair.Key, pair.Value)
	}
	return c
}

// Render returns the externally visible form of the record: NotApplicable
// fields are omitted and unresolved fields become placeholders by kind.
func (s *Stream) Render() *orderedmap.OrderedMap[string, string] {
	out := orderedmap.New[string, string]()
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		v := pair.Value
		switch {
		case v.IsNotApplicable():
			continue
		case v.IsUnresolved():
			out.Set(pair.Key, KindOf(pair.Key).Placeholder())
		default:
			out.Set(pair.Key, v.s)
		}
	}
	return out
}

// MarshalJSON encodes the rendered record.
func (s *Stream) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Render())
}

// MarshalYAML encodes the rendered record.
func (s *Stream) MarshalYAML() (interface{}, error) {
	return s.Render(), nil
}
